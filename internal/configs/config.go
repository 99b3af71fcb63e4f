package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Settings is the validated contents of the settings file. It is built once
// by Load and not modified afterwards.
type Settings struct {
	MyGPGIDs            []string
	SignWith            string
	PassphraseAccount   string
	PassphraseField     string
	RecipientsField     string
	EstimatedValueField string
	NameTemplate        string
	Networth            string
	CC                  []string
	AccountsDir         string
	GPGBinary           string
	MailCommand         string
	NetworthCommand     string

	// Recipients are kept in the order they appear in the settings file.
	Recipients []Recipient
}

// Recipient is a beneficiary and the categories of accounts they receive.
type Recipient struct {
	Name       string
	Categories []string
	Email      []string
	GPGIDs     []string
	Attach     []string
	Salutation string
	Networth   string

	// Accounts is the expected number of accounts, nil when not configured.
	Accounts *int
}

const (
	DefaultPassphraseField     = "passcode"
	DefaultRecipientsField     = "postmortem_recipients"
	DefaultEstimatedValueField = "estimated_value"
	DefaultNameTemplate        = "{name}"
)

// Defaults returns the settings used when no settings file exists.
func Defaults(paths Paths) *Settings {
	return &Settings{
		PassphraseField:     DefaultPassphraseField,
		RecipientsField:     DefaultRecipientsField,
		EstimatedValueField: DefaultEstimatedValueField,
		NameTemplate:        DefaultNameTemplate,
		AccountsDir:         paths.AccountsDir,
		GPGBinary:           "gpg",
		MailCommand:         "mail",
		NetworthCommand:     "networth",
	}
}

// Load reads and validates the settings file at path. A missing file is not
// an error: the defaults are returned along with a warning. Unknown keys are
// dropped and reported as warnings.
func Load(path string, paths Paths) (*Settings, []string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		warning := fmt.Sprintf("%s: settings file not found, using defaults", path)
		return Defaults(paths), []string{warning}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return Parse(data, filepath.Base(path), paths)
}

// Parse validates settings held in memory. name is used in error messages.
func Parse(data []byte, name string, paths Paths) (*Settings, []string, error) {
	root, err := parseYAML(data, name)
	if err != nil {
		return nil, nil, err
	}

	if err := expandReferences(root, name); err != nil {
		return nil, nil, err
	}

	v := &validator{file: name}
	settings, err := v.settings(root, Defaults(paths))
	if err != nil {
		return nil, nil, err
	}
	return settings, v.warnings, nil
}

// Recipient returns the recipient with the given name.
func (s *Settings) Recipient(name string) (Recipient, bool) {
	for _, r := range s.Recipients {
		if r.Name == name {
			return r, true
		}
	}
	return Recipient{}, false
}

// SigningEnabled reports whether archives should be signed.
func (s *Settings) SigningEnabled() bool {
	return s.SignWith != "" && s.PassphraseAccount != ""
}

// PacketName expands the name template for a recipient.
func (s *Settings) PacketName(r Recipient, now time.Time) string {
	tmpl := s.NameTemplate
	if tmpl == "" {
		tmpl = DefaultNameTemplate
	}
	return strings.NewReplacer(
		"{name}", r.Name,
		"{date}", now.Format("2006-01-02"),
	).Replace(tmpl)
}

// NetworthProfile resolves whether a networth report is wanted for r and
// with which profile. An empty profile means the generator's default.
func (s *Settings) NetworthProfile(r Recipient) (string, bool) {
	value := s.Networth
	if r.Networth != "" {
		value = r.Networth
	}
	switch strings.ToLower(value) {
	case "", "no", "false":
		return "", false
	case "yes", "true", "default":
		return "", true
	}
	return value, true
}

// KeyIDs returns the gpg identities packets for r are encrypted to.
// Email addresses are used when no key ids are configured.
func (r Recipient) KeyIDs() []string {
	if len(r.GPGIDs) > 0 {
		return r.GPGIDs
	}
	return r.Email
}

// InCategory reports whether any of the given tags is one of r's categories.
func (r Recipient) InCategory(tags map[string]bool) bool {
	for _, c := range r.Categories {
		if tags[c] {
			return true
		}
	}
	return false
}
