package workflows

import (
	"context"
	"fmt"
	"time"

	"github.com/PolarWolf314/postmortem/internal/accounts"
	"github.com/PolarWolf314/postmortem/internal/command"
	"github.com/PolarWolf314/postmortem/internal/configs"
	"github.com/PolarWolf314/postmortem/internal/dispatch"
	pmerrors "github.com/PolarWolf314/postmortem/internal/errors"
	"github.com/PolarWolf314/postmortem/internal/gpg"
	logger "github.com/PolarWolf314/postmortem/internal/logging"
	"github.com/PolarWolf314/postmortem/internal/packager"
	"github.com/PolarWolf314/postmortem/internal/render"
	"github.com/PolarWolf314/postmortem/internal/runlog"
	"github.com/PolarWolf314/postmortem/internal/scanner"
	"github.com/PolarWolf314/postmortem/internal/utils"
)

// GenerateOptions configures the generate workflow.
type GenerateOptions struct {
	// Recipients limits the run to the named recipients. Empty means all.
	Recipients []string

	// Send mails each packet to its recipient.
	Send bool

	// Redact replaces secret values and skips the importable account file.
	Redact bool

	// Dir is where packets are written. Defaults to the current directory.
	Dir string

	// LogFile is the run log. Empty disables it.
	LogFile string

	// Runner executes gpg, mail and networth. Defaults to command.ExecRunner.
	Runner command.Runner

	// Encrypter overrides gpg. Defaults to the settings' gpg binary.
	Encrypter packager.Encrypter

	Log logger.Logger
	Now func() time.Time
}

// PacketResult describes the packet produced for one recipient.
type PacketResult struct {
	Recipient string
	Archive   string
	Accounts  int
	Sent      bool
}

// GenerateResult contains the outcome of a generate operation.
type GenerateResult struct {
	// RunID identifies this run in the run log.
	RunID string

	// Packets holds one entry per recipient, in configuration order.
	Packets []PacketResult
}

// Generate builds a packet for each selected recipient.
//
// Recipients are processed in the order they appear in the settings file.
// The first unrecoverable error stops the run; packets already written are
// kept.
//
// Returns ErrUnknownRecipient if a requested recipient is not configured.
// Returns ErrCredential if signing is configured but the passphrase cannot be read.
// Returns an EncryptError if gpg fails, ErrSendFailed if mailing fails.
func Generate(ctx context.Context, settings *configs.Settings, store accounts.Store, opts GenerateOptions) (*GenerateResult, error) {
	recipients, err := selectRecipients(settings, opts.Recipients)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		opts.Log.Warnf("no recipients configured")
		return &GenerateResult{}, nil
	}

	runner := opts.Runner
	if runner == nil {
		runner = command.ExecRunner{}
	}
	encrypter := opts.Encrypter
	if encrypter == nil {
		encrypter = gpg.New(settings.GPGBinary, runner)
	}

	var passphrase string
	if settings.SigningEnabled() {
		opts.Log.Debugf("reading signing passphrase from %s", settings.PassphraseAccount)
		passphrase, err = accounts.Credential(ctx, store, settings.PassphraseAccount, settings.PassphraseField)
		if err != nil {
			return nil, err
		}
	}

	selections, err := scanner.Scan(ctx, store, recipients, scanner.Options{
		RecipientsField:     settings.RecipientsField,
		EstimatedValueField: settings.EstimatedValueField,
	}, opts.Log)
	if err != nil {
		return nil, err
	}

	owner, err := utils.GetUsername()
	if err != nil {
		opts.Log.Debugf("could not determine user name: %v", err)
		owner = "postmortem"
	}

	pkg := &packager.Packager{
		Settings:   settings,
		GPG:        encrypter,
		Runner:     runner,
		Log:        opts.Log,
		Dir:        opts.Dir,
		Passphrase: passphrase,
		Owner:      owner,
		Now:        opts.Now,
	}
	mailer := dispatch.New(settings, runner)

	result := &GenerateResult{RunID: runlog.NewRunID()}
	for _, sel := range selections {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		collector := &render.Collector{Options: render.Options{
			RecipientsField: settings.RecipientsField,
			Redact:          opts.Redact,
		}}
		for _, acc := range sel.Accounts {
			if err := collector.Add(acc); err != nil {
				return result, fmt.Errorf("%s: %w", acc.Name(), err)
			}
		}

		packet, err := pkg.Build(ctx, sel.Recipient, collector)
		if err != nil {
			return result, err
		}
		opts.Log.Infof("%s: wrote %s", sel.Recipient.Name, packet.Archive)

		pr := PacketResult{Recipient: sel.Recipient.Name, Archive: packet.Archive, Accounts: packet.Accounts}
		if opts.Send {
			sent, err := mailer.Send(ctx, sel.Recipient, packet.Archive)
			if err != nil {
				return result, err
			}
			if !sent {
				opts.Log.Warnf("%s: no email address, not sent", sel.Recipient.Name)
			}
			pr.Sent = sent
		}
		result.Packets = append(result.Packets, pr)

		runlog.Log(opts.LogFile, runlog.Entry{
			RunID:     result.RunID,
			Recipient: pr.Recipient,
			Accounts:  pr.Accounts,
			Digest:    runlog.Digest(packet.Text),
			Archive:   pr.Archive,
			Redacted:  opts.Redact,
			Sent:      pr.Sent,
		})
	}

	return result, nil
}

// selectRecipients returns the configured recipients named in names, in
// configuration order, or all of them when names is empty.
func selectRecipients(settings *configs.Settings, names []string) ([]configs.Recipient, error) {
	if len(names) == 0 {
		return settings.Recipients, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := settings.Recipient(name); !ok {
			return nil, fmt.Errorf("%w: %s", pmerrors.ErrUnknownRecipient, name)
		}
		wanted[name] = true
	}

	var selected []configs.Recipient
	for _, r := range settings.Recipients {
		if wanted[r.Name] {
			selected = append(selected, r)
		}
	}
	return selected, nil
}
