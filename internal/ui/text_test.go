package ui

import (
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestPlainOutput(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"Code", Code.Sprintf("postmortem %s", "--send"), "`postmortem --send`"},
		{"Path", Path.Sprint("alice.tgz.gpg"), "alice.tgz.gpg"},
		{"Highlight", Highlight.Sprint("alice"), "'alice'"},
		{"Muted", Muted.Sprintf("%d accounts", 3), "(3 accounts)"},
		{"Warning", Warning.Sprint("!"), "!"},
		{"Done", Done("%s (%s)", Highlight.Sprint("alice"), "1 account"), "✓ 'alice' (1 account)"},
		{"Failed", Failed("alice: %s", "encryption failed"), "✗ alice: encryption failed"},
		{"Hint", Hint("run %s", Code.Sprint("./unpack")), "→ run `./unpack`"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestColorOutput(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	os.Unsetenv("NO_COLOR")
	original := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = original }()

	got := Highlight.Sprint("alice")
	if strings.Contains(got, "'") {
		t.Errorf("quotes should be dropped when colored, got %q", got)
	}
	if !strings.Contains(got, "\x1b[") || !strings.Contains(got, "alice") {
		t.Errorf("expected colored text, got %q", got)
	}
}

func TestIndent(t *testing.T) {
	got := Indent("gpg: skipped\n\ngpg: no public key", 4)
	want := "    gpg: skipped\n\n    gpg: no public key"
	if got != want {
		t.Errorf("Indent() = %q, want %q", got, want)
	}
}

func TestEnsureNewline(t *testing.T) {
	for in, want := range map[string]string{"": "\n", "done": "done\n", "done\n": "done\n"} {
		if got := EnsureNewline(in); got != want {
			t.Errorf("EnsureNewline(%q) = %q, want %q", in, got, want)
		}
	}
}
