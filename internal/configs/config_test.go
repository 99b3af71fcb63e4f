package configs

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	pmerrors "github.com/PolarWolf314/postmortem/internal/errors"
)

const validSettings = `
my gpg ids: 0x1A2B3C4D
sign with: me@example.com
avendesora gpg passphrase account: gpg
name template: "{name}-{date}"
networth: yes
family: alice@example.com
cc: "@family"
recipients:
    alice:
        email: alice@example.com
        category: family
        accounts: 2
        attach:
            - ~/docs/will.pdf
    bob:
        gpg ids: [ 0123456789ABCDEF ]
        category: family business
        networth: retirement
        salutation: Hi Bob,
`

func testPaths(t *testing.T) Paths {
	dir := t.TempDir()
	return Paths{
		ConfigDir:    dir,
		SettingsFile: filepath.Join(dir, "settings.yaml"),
		DataDir:      filepath.Join(dir, "data"),
		LogFile:      filepath.Join(dir, "data", "log.jsonl"),
		AccountsDir:  filepath.Join(dir, "accounts"),
	}
}

func TestParseValidSettings(t *testing.T) {
	paths := testPaths(t)
	settings, warnings, err := Parse([]byte(validSettings), "settings.yaml", paths)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if !reflect.DeepEqual(settings.MyGPGIDs, []string{"0x1A2B3C4D"}) {
		t.Errorf("MyGPGIDs = %v", settings.MyGPGIDs)
	}
	if settings.SignWith != "me@example.com" {
		t.Errorf("SignWith = %q", settings.SignWith)
	}
	if settings.PassphraseAccount != "gpg" {
		t.Errorf("PassphraseAccount = %q", settings.PassphraseAccount)
	}
	if settings.PassphraseField != DefaultPassphraseField {
		t.Errorf("PassphraseField = %q, want default", settings.PassphraseField)
	}
	if settings.AccountsDir != paths.AccountsDir {
		t.Errorf("AccountsDir = %q, want default %q", settings.AccountsDir, paths.AccountsDir)
	}
	if !reflect.DeepEqual(settings.CC, []string{"alice@example.com"}) {
		t.Errorf("CC should be expanded from @family, got %v", settings.CC)
	}

	if len(settings.Recipients) != 2 {
		t.Fatalf("expected 2 recipients, got %d", len(settings.Recipients))
	}
	alice, bob := settings.Recipients[0], settings.Recipients[1]
	if alice.Name != "alice" || bob.Name != "bob" {
		t.Errorf("recipients out of order: %q, %q", alice.Name, bob.Name)
	}
	if alice.Accounts == nil || *alice.Accounts != 2 {
		t.Errorf("alice.Accounts = %v", alice.Accounts)
	}
	if bob.Accounts != nil {
		t.Errorf("bob.Accounts should be unset, got %v", *bob.Accounts)
	}
	if !reflect.DeepEqual(bob.Categories, []string{"family", "business"}) {
		t.Errorf("bob.Categories = %v", bob.Categories)
	}
	if !reflect.DeepEqual(alice.KeyIDs(), []string{"alice@example.com"}) {
		t.Errorf("alice.KeyIDs should fall back to email, got %v", alice.KeyIDs())
	}
	if !reflect.DeepEqual(bob.KeyIDs(), []string{"0123456789ABCDEF"}) {
		t.Errorf("bob.KeyIDs = %v", bob.KeyIDs())
	}
	if strings.HasPrefix(alice.Attach[0], "~") {
		t.Errorf("attachment path should be expanded, got %q", alice.Attach[0])
	}

	// The "family" helper setting is not part of the schema.
	if len(warnings) != 1 || !strings.Contains(warnings[0], "family: unknown key") {
		t.Errorf("expected one unknown key warning, got %v", warnings)
	}
	if !strings.Contains(warnings[0], "settings.yaml:7:") {
		t.Errorf("warning should carry the source line, got %q", warnings[0])
	}
}

func TestParseReportsLocation(t *testing.T) {
	input := `my gpg ids: me@example.com
avendesora gpg passphrase account: gpg
recipients:
    alice:
        email: alice@
        category: family
`
	_, _, err := Parse([]byte(input), "settings.yaml", testPaths(t))
	if err == nil {
		t.Fatal("expected validation error")
	}

	var cerr *pmerrors.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigError, got %T: %v", err, err)
	}
	if cerr.Path != "recipients.alice.email" {
		t.Errorf("Path = %q", cerr.Path)
	}
	if cerr.Line != 5 {
		t.Errorf("Line = %d, want 5", cerr.Line)
	}
	if !errors.Is(err, pmerrors.ErrInvalidConfig) {
		t.Error("expected ErrInvalidConfig")
	}
}

func TestParseValidationFailures(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantPath string
	}{
		{
			"missing recipients",
			"my gpg ids: me@example.com\navendesora gpg passphrase account: gpg\n",
			"recipients",
		},
		{
			"missing passphrase account",
			"my gpg ids: me@example.com\nrecipients:\n    a:\n        email: a@example.com\n        category: x\n",
			"avendesora_gpg_passphrase_account",
		},
		{
			"bad gpg id",
			"my gpg ids: 1234\navendesora gpg passphrase account: gpg\nrecipients:\n    a:\n        email: a@example.com\n        category: x\n",
			"my_gpg_ids",
		},
		{
			"recipient without contact",
			"my gpg ids: me@example.com\navendesora gpg passphrase account: gpg\nrecipients:\n    a:\n        category: x\n",
			"recipients.a",
		},
		{
			"recipient without category",
			"my gpg ids: me@example.com\navendesora gpg passphrase account: gpg\nrecipients:\n    a:\n        email: a@example.com\n",
			"recipients.a.category",
		},
		{
			"bad account count",
			"my gpg ids: me@example.com\navendesora gpg passphrase account: gpg\nrecipients:\n    a:\n        email: a@example.com\n        category: x\n        accounts: many\n",
			"recipients.a.accounts",
		},
		{
			"bad identifier",
			"my gpg ids: me@example.com\navendesora gpg passphrase account: my gpg\nrecipients:\n    a:\n        email: a@example.com\n        category: x\n",
			"avendesora_gpg_passphrase_account",
		},
		{
			"recipient name with separator",
			"my gpg ids: me@example.com\navendesora gpg passphrase account: gpg\nrecipients:\n    ../alice:\n        email: a@example.com\n        category: x\n",
			"recipients.../alice",
		},
		{
			"recipient named dot",
			"my gpg ids: me@example.com\navendesora gpg passphrase account: gpg\nrecipients:\n    \".\":\n        email: a@example.com\n        category: x\n",
			"recipients..",
		},
		{
			"name template with separator",
			"my gpg ids: me@example.com\navendesora gpg passphrase account: gpg\nname template: \"{name}/{date}\"\nrecipients:\n    a:\n        email: a@example.com\n        category: x\n",
			"name_template",
		},
		{
			"name template of dots",
			"my gpg ids: me@example.com\navendesora gpg passphrase account: gpg\nname template: \"..\"\nrecipients:\n    a:\n        email: a@example.com\n        category: x\n",
			"name_template",
		},
		{
			"duplicate normalized key",
			"my gpg ids: me@example.com\nmy_gpg_ids: me@example.com\n",
			"my_gpg_ids",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse([]byte(tt.input), "settings.yaml", testPaths(t))
			var cerr *pmerrors.ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cerr.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q (%v)", cerr.Path, tt.wantPath, err)
			}
		})
	}
}

func TestReferences(t *testing.T) {
	t.Run("Chained", func(t *testing.T) {
		input := `my gpg ids: "@me"
me: "@primary key"
primary key: me@example.com
avendesora gpg passphrase account: gpg
recipients:
    alice:
        email: alice@example.com
        category: "@@literal"
`
		settings, _, err := Parse([]byte(input), "settings.yaml", testPaths(t))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if !reflect.DeepEqual(settings.MyGPGIDs, []string{"me@example.com"}) {
			t.Errorf("MyGPGIDs = %v", settings.MyGPGIDs)
		}
		if !reflect.DeepEqual(settings.Recipients[0].Categories, []string{"@literal"}) {
			t.Errorf("escaped reference = %v", settings.Recipients[0].Categories)
		}
	})

	t.Run("InsideSequences", func(t *testing.T) {
		input := `my gpg ids: me@example.com
avendesora gpg passphrase account: gpg
will: ~/will.pdf
recipients:
    alice:
        email: alice@example.com
        category: family
        attach: [ "@will", ~/photos ]
`
		settings, _, err := Parse([]byte(input), "settings.yaml", testPaths(t))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		attach := settings.Recipients[0].Attach
		if len(attach) != 2 || !strings.HasSuffix(attach[0], "will.pdf") {
			t.Errorf("attach = %v", attach)
		}
	})

	t.Run("ErrorsPointAtReference", func(t *testing.T) {
		input := `my gpg ids: me@example.com
avendesora gpg passphrase account: gpg
bad address: not-an-email
recipients:
    alice:
        email: "@bad address"
        category: family
`
		_, _, err := Parse([]byte(input), "settings.yaml", testPaths(t))
		var cerr *pmerrors.ConfigError
		if !errors.As(err, &cerr) {
			t.Fatalf("expected ConfigError, got %v", err)
		}
		if cerr.Path != "recipients.alice.email" || cerr.Line != 6 {
			t.Errorf("got %s line %d, want recipients.alice.email line 6", cerr.Path, cerr.Line)
		}
	})

	t.Run("Cycle", func(t *testing.T) {
		input := "a: \"@b\"\nb: \"@c\"\nc: \"@a\"\n"
		_, _, err := Parse([]byte(input), "settings.yaml", testPaths(t))
		if !errors.Is(err, pmerrors.ErrReferenceCycle) {
			t.Fatalf("expected ErrReferenceCycle, got %v", err)
		}
		if !strings.Contains(err.Error(), "a -> b -> c -> a") {
			t.Errorf("error should show the loop, got %q", err.Error())
		}
	})

	t.Run("SelfReference", func(t *testing.T) {
		_, _, err := Parse([]byte("a: [ x, \"@a\" ]\n"), "settings.yaml", testPaths(t))
		if !errors.Is(err, pmerrors.ErrReferenceCycle) {
			t.Fatalf("expected ErrReferenceCycle, got %v", err)
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		_, _, err := Parse([]byte("cc: \"@nobody\"\n"), "settings.yaml", testPaths(t))
		if !errors.Is(err, pmerrors.ErrUnknownReference) {
			t.Fatalf("expected ErrUnknownReference, got %v", err)
		}
	})
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	paths := testPaths(t)
	settings, warnings, err := Load(paths.SettingsFile, paths)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "not found") {
		t.Errorf("expected a missing file warning, got %v", warnings)
	}
	if settings.RecipientsField != DefaultRecipientsField {
		t.Errorf("RecipientsField = %q", settings.RecipientsField)
	}
	if len(settings.Recipients) != 0 {
		t.Errorf("defaults should have no recipients")
	}
}

func TestLoadFromDisk(t *testing.T) {
	paths := testPaths(t)
	if err := os.WriteFile(paths.SettingsFile, []byte(validSettings), 0600); err != nil {
		t.Fatal(err)
	}
	settings, _, err := Load(paths.SettingsFile, paths)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(settings.Recipients) != 2 {
		t.Errorf("expected 2 recipients, got %d", len(settings.Recipients))
	}
}

func TestMalformedYAML(t *testing.T) {
	_, _, err := Parse([]byte("recipients: [unclosed\n"), "settings.yaml", testPaths(t))
	if !errors.Is(err, pmerrors.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestPacketName(t *testing.T) {
	s := &Settings{NameTemplate: "{name}-{date}"}
	r := Recipient{Name: "alice"}
	now := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)
	if got := s.PacketName(r, now); got != "alice-2026-03-04" {
		t.Errorf("PacketName = %q", got)
	}

	s.NameTemplate = ""
	if got := s.PacketName(r, now); got != "alice" {
		t.Errorf("default PacketName = %q", got)
	}
}

func TestNetworthProfile(t *testing.T) {
	tests := []struct {
		global, override string
		wantProfile      string
		wantEnabled      bool
	}{
		{"", "", "", false},
		{"yes", "", "", true},
		{"yes", "no", "", false},
		{"", "retirement", "retirement", true},
		{"household", "", "household", true},
		{"household", "true", "", true},
	}

	for _, tt := range tests {
		s := &Settings{Networth: tt.global}
		profile, enabled := s.NetworthProfile(Recipient{Networth: tt.override})
		if profile != tt.wantProfile || enabled != tt.wantEnabled {
			t.Errorf("NetworthProfile(%q, %q) = (%q, %v), want (%q, %v)",
				tt.global, tt.override, profile, enabled, tt.wantProfile, tt.wantEnabled)
		}
	}
}

func TestSigningEnabled(t *testing.T) {
	s := &Settings{SignWith: "me@example.com"}
	if s.SigningEnabled() {
		t.Error("signing needs a passphrase account")
	}
	s.PassphraseAccount = "gpg"
	if !s.SigningEnabled() {
		t.Error("signing should be enabled")
	}
}
