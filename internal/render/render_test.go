package render

import (
	"strings"
	"testing"

	"github.com/PolarWolf314/postmortem/internal/accounts"
	"github.com/google/go-cmp/cmp"
)

const chase = `name = "chase"
aliases = ["bank"]
class = "BankAccount"
desc = "Joint checking account"
postmortem_recipients = "family"
username = "jdoe"
notes = """
Branch on Main St.
Ask for Pat."""

[passcode]
value = "7Xs7sXAd"
secret = true

[accounts]
checking = "12345678"

[[questions]]
description = "first pet"
value = "fluffy"
secret = true

[[questions]]
value = "no description"
`

func parse(t *testing.T, body string) accounts.Account {
	t.Helper()
	acc, err := accounts.ParseAccount([]byte(body), "fallback")
	if err != nil {
		t.Fatal(err)
	}
	return acc
}

func TestText(t *testing.T) {
	got := Text(parse(t, chase), Options{RecipientsField: "postmortem_recipients"})
	want := `Joint checking account
======================
names: chase, bank
username: jdoe
notes:
    Branch on Main St.
    Ask for Pat.
passcode: 7Xs7sXAd
accounts:
    checking: 12345678
questions:
    0) first pet: fluffy
    1: no description`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Text mismatch (-want +got):\n%s", diff)
	}
}

func TestTextRedacted(t *testing.T) {
	acc := parse(t, chase)
	opts := Options{RecipientsField: "postmortem_recipients"}
	plain := strings.Split(Text(acc, opts), "\n")

	opts.Redact = true
	redacted := strings.Split(Text(acc, opts), "\n")

	if len(plain) != len(redacted) {
		t.Fatalf("redaction changed the number of lines: %d vs %d", len(plain), len(redacted))
	}

	changed := map[string]string{}
	for i := range plain {
		if plain[i] != redacted[i] {
			changed[plain[i]] = redacted[i]
		}
	}
	want := map[string]string{
		"passcode: 7Xs7sXAd":      "passcode: <redacted>",
		"    0) first pet: fluffy": "    0) first pet: <redacted>",
	}
	if diff := cmp.Diff(want, changed); diff != "" {
		t.Errorf("only secret values should change (-want +got):\n%s", diff)
	}
}

func TestTitleFallbacks(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{"desc = \"Mortgage\"\nclass = \"Loan\"\n", "Mortgage"},
		{"class = \"Loan\"\n", "Loan"},
		{"username = \"x\"\n", "fallback"},
	}
	for _, tt := range tests {
		if got := Title(parse(t, tt.body)); got != tt.want {
			t.Errorf("Title = %q, want %q", got, tt.want)
		}
	}
}

func TestUnderlineMatchesDisplayWidth(t *testing.T) {
	got := Text(parse(t, "desc = \"銀行口座\"\n"), Options{})
	lines := strings.Split(got, "\n")
	if lines[1] != strings.Repeat("=", 8) {
		t.Errorf("underline = %q, want 8 columns", lines[1])
	}
}

func TestCollector(t *testing.T) {
	acc := parse(t, chase)

	c := &Collector{Options: Options{RecipientsField: "postmortem_recipients"}}
	if err := c.Add(acc); err != nil {
		t.Fatal(err)
	}
	if err := c.Add(acc); err != nil {
		t.Fatal(err)
	}
	if len(c.Texts) != 2 || len(c.Exports) != 2 {
		t.Fatalf("expected 2 texts and 2 exports, got %d and %d", len(c.Texts), len(c.Exports))
	}
	if c.Exports[0].Data != chase || c.Exports[0].Name != "chase" {
		t.Error("export record should be the unmodified account file")
	}

	joined := Join(c.Texts)
	if strings.Count(joined, "Joint checking account\n===") != 2 {
		t.Error("each block should appear once per add")
	}
	if !strings.Contains(joined, "1: no description\n\n\nJoint checking account") {
		t.Error("blocks should be separated by two blank lines")
	}

	redacting := &Collector{Options: Options{Redact: true}}
	if err := redacting.Add(acc); err != nil {
		t.Fatal(err)
	}
	if len(redacting.Exports) != 0 {
		t.Error("export records must not be produced when redacting")
	}
}

func TestTextIsDeterministic(t *testing.T) {
	opts := Options{RecipientsField: "postmortem_recipients"}
	first := Text(parse(t, chase), opts)
	for i := 0; i < 5; i++ {
		if got := Text(parse(t, chase), opts); got != first {
			t.Fatalf("render %d differs from the first", i)
		}
	}
}
