package workflows

import (
	"context"
	"fmt"
	"os"
	"time"

	pmerrors "github.com/PolarWolf314/postmortem/internal/errors"
	"github.com/PolarWolf314/postmortem/internal/runlog"
)

const timestampLayout = "2006-01-02T15:04:05.000000Z"

// HistoryOptions configures the history workflow.
type HistoryOptions struct {
	// LogFile is the run log to read.
	LogFile string

	// Limit is the maximum number of entries to return. 0 means no limit.
	Limit int

	// Recipients filters entries by recipient name.
	Recipients []string

	// Since filters entries after this date (YYYY-MM-DD format).
	Since string
}

// HistoryEntry is a run log entry along with whether the recipient's
// accounts differ from the previous run that included them.
type HistoryEntry struct {
	runlog.Entry
	Changed bool `json:"changed"`
}

// HistoryResult contains the outcome of a history operation.
type HistoryResult struct {
	Entries []HistoryEntry

	// TotalEntriesBeforeFilter is the count of entries before filtering.
	TotalEntriesBeforeFilter int
}

// History reads and filters the run log, oldest first.
//
// Returns ErrNoHistory if no run log exists.
// Returns ErrInvalidDateFormat if the date format is invalid.
func History(ctx context.Context, opts HistoryOptions) (*HistoryResult, error) {
	data, err := os.ReadFile(opts.LogFile)
	if os.IsNotExist(err) {
		return nil, pmerrors.ErrNoHistory
	}
	if err != nil {
		return nil, fmt.Errorf("reading run log: %w", err)
	}

	entries, err := runlog.ParseEntries(data)
	if err != nil {
		return nil, fmt.Errorf("parsing run log: %w", err)
	}

	// Change detection needs every entry, so it runs before filtering.
	previous := make(map[string]string)
	annotated := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		last, seen := previous[e.Recipient]
		annotated = append(annotated, HistoryEntry{Entry: e, Changed: seen && last != e.Digest})
		previous[e.Recipient] = e.Digest
	}

	result := &HistoryResult{TotalEntriesBeforeFilter: len(entries)}
	filtered := annotated

	if len(opts.Recipients) > 0 {
		filtered = filterByRecipients(filtered, opts.Recipients)
	}

	if opts.Since != "" {
		since, err := time.Parse("2006-01-02", opts.Since)
		if err != nil {
			return nil, fmt.Errorf("%w: --since date format invalid, use YYYY-MM-DD", pmerrors.ErrInvalidDateFormat)
		}
		filtered = filterSince(filtered, since)
	}

	// Limit keeps the most recent entries.
	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[len(filtered)-opts.Limit:]
	}

	result.Entries = filtered
	return result, nil
}

func filterByRecipients(entries []HistoryEntry, names []string) []HistoryEntry {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	var result []HistoryEntry
	for _, e := range entries {
		if wanted[e.Recipient] {
			result = append(result, e)
		}
	}
	return result
}

// filterSince filters entries to only include those at or after the given time.
func filterSince(entries []HistoryEntry, since time.Time) []HistoryEntry {
	var result []HistoryEntry
	for _, e := range entries {
		t, err := parseTimestamp(e.Timestamp)
		if err != nil {
			continue
		}
		if !t.Before(since) {
			result = append(result, e)
		}
	}
	return result
}

func parseTimestamp(ts string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, ts)
	if err != nil {
		t, err = time.Parse(time.RFC3339, ts)
	}
	return t, err
}

// FormatDateTime formats a timestamp string to YYYY-MM-DD HH:MM:SS format.
func FormatDateTime(ts string) string {
	t, err := parseTimestamp(ts)
	if err != nil {
		if len(ts) >= 19 {
			return ts[:19]
		}
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}
