// Package scanner decides which accounts go to which recipients.
package scanner

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/postmortem/internal/accounts"
	"github.com/PolarWolf314/postmortem/internal/configs"
	"github.com/PolarWolf314/postmortem/internal/utils"
)

// Warner receives recoverable conditions found while scanning.
type Warner interface {
	Warnf(msg string, args ...any)
}

// Selection is the list of accounts chosen for one recipient.
type Selection struct {
	Recipient configs.Recipient
	Accounts  []accounts.Account
}

// Options controls a scan.
type Options struct {
	// RecipientsField names the field holding an account's category tags.
	RecipientsField string

	// EstimatedValueField names the field that marks an account as worth
	// passing on. Such an account without tags is reported.
	EstimatedValueField string
}

// Scan reads every account in store and returns one Selection per recipient,
// in the order given. An account is selected for every recipient whose
// categories intersect its tags.
func Scan(ctx context.Context, store accounts.Store, recipients []configs.Recipient, opts Options, warn Warner) ([]Selection, error) {
	all, err := store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}

	selections := make([]Selection, len(recipients))
	for i, r := range recipients {
		selections[i].Recipient = r
	}

	for _, acc := range all {
		tags := Tags(acc, opts.RecipientsField)
		if tags == nil {
			if _, valued := acc.Scalar(opts.EstimatedValueField); valued {
				warn.Warnf("%s: no recipients", acc.Name())
			}
			continue
		}

		for i := range selections {
			if selections[i].Recipient.InCategory(tags) {
				selections[i].Accounts = append(selections[i].Accounts, acc)
			}
		}
	}
	return selections, nil
}

// Tags returns the set of category tags on acc, or nil if the account has
// no recipients field.
func Tags(acc accounts.Account, field string) map[string]bool {
	var values []string
	if v, ok := acc.Scalar(field); ok {
		values = append(values, v.Text)
	} else if entries, ok := acc.Multi(field); ok {
		for _, e := range entries {
			values = append(values, e.Value.Text)
		}
	} else {
		return nil
	}

	tags := make(map[string]bool)
	for _, v := range values {
		for _, tag := range utils.SplitTags(v) {
			tags[tag] = true
		}
	}
	return tags
}
