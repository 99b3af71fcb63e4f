// Package render turns accounts into the text placed in a recipient's packet.
package render

import (
	"strings"

	"github.com/PolarWolf314/postmortem/internal/accounts"
	"github.com/mattn/go-runewidth"
)

// Redacted replaces secret values when redaction is requested.
const Redacted = "<redacted>"

// BlockSeparator joins the blocks of consecutive accounts.
const BlockSeparator = "\n\n\n"

const indent = "    "

// Options controls rendering.
type Options struct {
	// RecipientsField is the tag field; it is never shown.
	RecipientsField string

	// Redact replaces every secret value with Redacted.
	Redact bool
}

// hidden lists fields that are shown elsewhere in the block or are internal.
var hidden = map[string]bool{"desc": true, "name": true}

// Text renders the human-readable block for acc. The block has a title
// underlined with '=', the account's names, then one entry per field.
func Text(acc accounts.Account, opts Options) string {
	var b strings.Builder

	title := Title(acc)
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", runewidth.StringWidth(title)))
	b.WriteString("\n")

	names := append([]string{acc.Name()}, acc.Aliases()...)
	b.WriteString("names: ")
	b.WriteString(strings.Join(names, ", "))

	for _, field := range acc.Fields() {
		if hidden[field] || field == opts.RecipientsField {
			continue
		}
		if v, ok := acc.Scalar(field); ok {
			b.WriteString("\n")
			writeValue(&b, "", field, v, opts.Redact)
			continue
		}
		entries, ok := acc.Multi(field)
		if !ok {
			continue
		}
		b.WriteString("\n")
		b.WriteString(field)
		b.WriteString(":")
		for _, e := range entries {
			label := e.Key
			if e.Description != "" {
				label = e.Key + ") " + e.Description
			}
			b.WriteString("\n")
			writeValue(&b, indent, label, e.Value, opts.Redact)
		}
	}
	return b.String()
}

// Title is the first line of an account's block: its description, falling
// back to its class and then its name.
func Title(acc accounts.Account) string {
	for _, t := range []string{acc.Description(), acc.Class(), acc.Name()} {
		if t = strings.TrimSpace(t); t != "" {
			return t
		}
	}
	return ""
}

func writeValue(b *strings.Builder, prefix, label string, v accounts.Value, redact bool) {
	b.WriteString(prefix)
	b.WriteString(label)
	b.WriteString(":")

	text := v.Text
	if redact && v.Secret {
		text = Redacted
	}

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) == 1 {
		b.WriteString(" ")
		b.WriteString(lines[0])
		return
	}
	for _, line := range lines {
		b.WriteString("\n")
		if line != "" {
			b.WriteString(prefix + indent + line)
		}
	}
}

// ExportRecord is an account in the store's own format.
type ExportRecord struct {
	Name string
	Data string
}

// Export returns the store's serialization of acc for the import file.
func Export(acc accounts.Account) (ExportRecord, error) {
	data, err := acc.Export()
	if err != nil {
		return ExportRecord{}, err
	}
	return ExportRecord{Name: acc.Name(), Data: string(data)}, nil
}

// Join concatenates rendered blocks into the contents of a packet file.
func Join(blocks []string) string {
	if len(blocks) == 0 {
		return ""
	}
	return strings.Join(blocks, BlockSeparator) + "\n"
}

// Collector accumulates the rendered accounts of one recipient.
type Collector struct {
	Options Options
	Texts   []string
	Exports []ExportRecord
}

// Add renders acc into the collector. Export records are only kept when
// redaction is off.
func (c *Collector) Add(acc accounts.Account) error {
	c.Texts = append(c.Texts, Text(acc, c.Options))
	if c.Options.Redact {
		return nil
	}
	export, err := Export(acc)
	if err != nil {
		return err
	}
	c.Exports = append(c.Exports, export)
	return nil
}
