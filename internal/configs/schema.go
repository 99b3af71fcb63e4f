package configs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	pmerrors "github.com/PolarWolf314/postmortem/internal/errors"
	"github.com/PolarWolf314/postmortem/internal/utils"
)

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-]*$`)

var requiredKeys = []string{"my_gpg_ids", "recipients", "avendesora_gpg_passphrase_account"}

// validator converts the node tree into Settings, collecting warnings for
// anything it drops.
type validator struct {
	file     string
	warnings []string
}

func (v *validator) fail(path string, line int, format string, args ...any) error {
	return &pmerrors.ConfigError{File: v.file, Path: path, Line: line, Msg: fmt.Sprintf(format, args...)}
}

func (v *validator) warnUnknown(path string, line int) {
	loc := v.file
	if line > 0 {
		loc = fmt.Sprintf("%s:%d", v.file, line)
	}
	v.warnings = append(v.warnings, fmt.Sprintf("%s: %s: unknown key, ignored", loc, path))
}

func (v *validator) settings(root *node, s *Settings) (*Settings, error) {
	seen := make(map[string]int)

	for _, e := range root.entries {
		key := utils.NormalizeKey(e.key)
		if _, ok := seen[key]; ok {
			return nil, v.fail(key, e.line, "duplicate key")
		}
		seen[key] = e.line

		var err error
		switch key {
		case "my_gpg_ids":
			s.MyGPGIDs, err = v.gpgIDs(key, e.value)
		case "sign_with":
			s.SignWith, err = v.gpgID(key, e.value)
		case "avendesora_gpg_passphrase_account":
			s.PassphraseAccount, err = v.identifier(key, e.value)
		case "avendesora_gpg_passphrase_field":
			s.PassphraseField, err = v.identifier(key, e.value)
		case "recipients_field":
			s.RecipientsField, err = v.identifier(key, e.value)
		case "estimated_value_field":
			s.EstimatedValueField, err = v.identifier(key, e.value)
		case "name_template":
			s.NameTemplate, err = v.nameTemplate(key, e.value)
		case "networth":
			s.Networth, err = v.text(key, e.value)
		case "cc":
			s.CC, err = v.emails(key, e.value)
		case "accounts_dir":
			s.AccountsDir, err = v.path(key, e.value)
		case "gpg_binary":
			s.GPGBinary, err = v.path(key, e.value)
		case "mail_command":
			s.MailCommand, err = v.text(key, e.value)
		case "networth_command":
			s.NetworthCommand, err = v.text(key, e.value)
		case "recipients":
			s.Recipients, err = v.recipients(key, e.value)
		default:
			v.warnUnknown(key, e.line)
		}
		if err != nil {
			return nil, err
		}
	}

	for _, key := range requiredKeys {
		if _, ok := seen[key]; !ok {
			return nil, v.fail(key, 0, "required key is missing")
		}
	}
	if len(s.MyGPGIDs) == 0 {
		return nil, v.fail("my_gpg_ids", seen["my_gpg_ids"], "at least one key id is required")
	}
	return s, nil
}

func (v *validator) recipients(path string, n *node) ([]Recipient, error) {
	if n.kind != mapNode || len(n.entries) == 0 {
		return nil, v.fail(path, n.line, "expected a mapping of recipient names to their settings")
	}

	var out []Recipient
	names := make(map[string]bool)
	for _, e := range n.entries {
		name := strings.TrimSpace(e.key)
		rpath := path + "." + name
		if name == "" {
			return nil, v.fail(rpath, e.line, "recipient name is empty")
		}
		if !utils.IsValidDirName(name) {
			return nil, v.fail(rpath, e.line, "recipient name must not be %q or contain a path separator", name)
		}
		if names[name] {
			return nil, v.fail(rpath, e.line, "duplicate recipient")
		}
		names[name] = true

		r, err := v.recipient(rpath, name, e)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (v *validator) recipient(path, name string, e *entry) (Recipient, error) {
	r := Recipient{Name: name}
	n := e.value
	if n.kind != mapNode {
		return r, v.fail(path, e.line, "expected a mapping")
	}

	seen := make(map[string]bool)
	for _, f := range n.entries {
		key := utils.NormalizeKey(f.key)
		fpath := path + "." + key
		if seen[key] {
			return r, v.fail(fpath, f.line, "duplicate key")
		}
		seen[key] = true

		var err error
		switch key {
		case "email":
			r.Email, err = v.emails(fpath, f.value)
		case "gpg_ids":
			r.GPGIDs, err = v.gpgIDs(fpath, f.value)
		case "category":
			r.Categories, err = v.list(fpath, f.value)
		case "attach":
			r.Attach, err = v.paths(fpath, f.value)
		case "salutation":
			r.Salutation, err = v.text(fpath, f.value)
		case "networth":
			r.Networth, err = v.text(fpath, f.value)
		case "accounts":
			var count int
			count, err = v.count(fpath, f.value)
			r.Accounts = &count
		default:
			v.warnUnknown(fpath, f.line)
		}
		if err != nil {
			return r, err
		}
	}

	if len(r.Email) == 0 && len(r.GPGIDs) == 0 {
		return r, v.fail(path, e.line, "an email address or gpg id is required")
	}
	if len(r.Categories) == 0 {
		return r, v.fail(path+".category", e.line, "at least one category is required")
	}
	return r, nil
}

func (v *validator) text(path string, n *node) (string, error) {
	switch n.kind {
	case scalarNode:
		return n.value, nil
	case nullNode:
		return "", nil
	}
	return "", v.fail(path, n.line, "expected a string")
}

// nameTemplate accepts a packet directory name; placeholders are expanded
// with a sample recipient so the result can be checked as a directory name.
func (v *validator) nameTemplate(path string, n *node) (string, error) {
	tmpl, err := v.text(path, n)
	if err != nil || tmpl == "" {
		return tmpl, err
	}
	sample := strings.NewReplacer("{name}", "recipient", "{date}", "2006-01-02").Replace(tmpl)
	if !utils.IsValidDirName(sample) {
		return "", v.fail(path, n.line, "template must produce a single directory name, got %q", tmpl)
	}
	return tmpl, nil
}

// list accepts a sequence of strings or a single whitespace delimited string.
func (v *validator) list(path string, n *node) ([]string, error) {
	switch n.kind {
	case nullNode:
		return nil, nil
	case scalarNode:
		return utils.SplitList(n.value), nil
	case seqNode:
		var out []string
		for i, item := range n.items {
			if item.kind != scalarNode {
				return nil, v.fail(fmt.Sprintf("%s[%d]", path, i), item.line, "expected a string")
			}
			if s := strings.TrimSpace(item.value); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	}
	return nil, v.fail(path, n.line, "expected a list")
}

func (v *validator) identifier(path string, n *node) (string, error) {
	s, err := v.text(path, n)
	if err != nil {
		return "", err
	}
	s = strings.TrimSpace(s)
	if !identifierRegex.MatchString(s) {
		return "", v.fail(path, n.line, "%q is not a valid identifier", s)
	}
	return s, nil
}

func (v *validator) gpgID(path string, n *node) (string, error) {
	s, err := v.text(path, n)
	if err != nil {
		return "", err
	}
	s = strings.TrimSpace(s)
	if !utils.IsValidGPGID(s) {
		return "", v.fail(path, n.line, "%q is not a valid gpg id (expected an email address or a hex key id)", s)
	}
	return s, nil
}

func (v *validator) gpgIDs(path string, n *node) ([]string, error) {
	ids, err := v.list(path, n)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if !utils.IsValidGPGID(id) {
			return nil, v.fail(path, n.line, "%q is not a valid gpg id (expected an email address or a hex key id)", id)
		}
	}
	return ids, nil
}

func (v *validator) emails(path string, n *node) ([]string, error) {
	items, err := v.list(path, n)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, item := range items {
		for _, addr := range utils.SplitTags(item) {
			if !utils.IsValidEmail(addr) {
				return nil, v.fail(path, n.line, "%q is not a valid email address", addr)
			}
			out = append(out, addr)
		}
	}
	return out, nil
}

func (v *validator) path(path string, n *node) (string, error) {
	s, err := v.text(path, n)
	if err != nil {
		return "", err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", v.fail(path, n.line, "expected a path")
	}
	return utils.ExpandHome(s), nil
}

func (v *validator) paths(path string, n *node) ([]string, error) {
	if n.kind == scalarNode {
		// A single scalar may hold several newline separated paths, which
		// keeps paths containing spaces usable.
		var out []string
		for _, line := range strings.Split(n.value, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, utils.ExpandHome(line))
			}
		}
		return out, nil
	}
	items, err := v.list(path, n)
	if err != nil {
		return nil, err
	}
	for i, item := range items {
		items[i] = utils.ExpandHome(item)
	}
	return items, nil
}

func (v *validator) count(path string, n *node) (int, error) {
	if n.kind != scalarNode {
		return 0, v.fail(path, n.line, "expected an integer")
	}
	count, err := strconv.Atoi(strings.TrimSpace(n.value))
	if err != nil || count < 0 {
		return 0, v.fail(path, n.line, "%q is not a non-negative integer", n.value)
	}
	return count, nil
}
