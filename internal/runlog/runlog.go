package runlog

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// Entry represents one packaged recipient.
type Entry struct {
	Timestamp string `json:"ts"`     // RFC3339 with microseconds.
	RunID     string `json:"run_id"` // Shared by all entries of one invocation.
	Recipient string `json:"recipient"`
	Accounts  int    `json:"accounts"`
	Digest    string `json:"digest,omitempty"` // BLAKE2b-256 of the accounts text.
	Archive   string `json:"archive"`
	Redacted  bool   `json:"redacted,omitempty"`
	Sent      bool   `json:"sent,omitempty"`
}

// NewRunID returns an identifier for one invocation.
func NewRunID() string {
	return uuid.NewString()
}

// Digest returns the hex BLAKE2b-256 sum of text, or "" for empty text.
func Digest(text string) string {
	if text == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Log appends an entry to the log at path.
// Failures are ignored: a run should not fail just because logging failed.
func Log(path string, entry Entry) {
	if path == "" {
		return
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// ReadEntries reads all entries from the log at path.
// Returns an empty slice if the log doesn't exist.
func ReadEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
