package accounts

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	pmerrors "github.com/PolarWolf314/postmortem/internal/errors"
)

// Keys with a fixed meaning; everything else is a field.
const (
	nameKey    = "name"
	aliasesKey = "aliases"
	classKey   = "class"
	descKey    = "desc"
)

type tomlAccount struct {
	name    string
	aliases []string
	class   string
	desc    string
	order   []string
	scalars map[string]Value
	multis  map[string][]Entry
	raw     []byte
}

// ParseAccount decodes one account file. defaultName is used when the file
// does not set a name.
//
// Plain keys are single-valued fields. A table with a value key is a
// single-valued field that may be marked secret:
//
//	[passcode]
//	value = "7Xs7sXAd"
//	secret = true
//
// An array of tables is an indexed multi-valued field; any other table is a
// multi-valued field keyed by its keys. Members may be plain values or
// tables with value, description and secret.
func ParseAccount(data []byte, defaultName string) (Account, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pmerrors.ErrInvalidAccount, err)
	}

	acc := &tomlAccount{
		name:    defaultName,
		scalars: make(map[string]Value),
		multis:  make(map[string][]Entry),
		raw:     data,
	}

	children := childOrder(md.Keys())
	for _, key := range children[""] {
		value := raw[key]
		switch key {
		case nameKey:
			acc.name = fmt.Sprint(value)
			continue
		case aliasesKey:
			acc.aliases = stringList(value)
			continue
		case classKey:
			acc.class = fmt.Sprint(value)
			continue
		case descKey:
			acc.desc = fmt.Sprint(value)
		}

		if err := acc.addField(key, value, children[key]); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// childOrder groups keys by parent, preserving the order they appear in the
// file. Members of arrays of tables are not tracked; their order is the
// array order.
func childOrder(keys []toml.Key) map[string][]string {
	out := make(map[string][]string)
	seen := make(map[string]bool)
	for _, k := range keys {
		if len(k) > 2 {
			continue
		}
		parent := ""
		if len(k) == 2 {
			parent = k[0]
		}
		id := k.String()
		if seen[id] {
			continue
		}
		seen[id] = true
		out[parent] = append(out[parent], k[len(k)-1])
	}
	return out
}

func (a *tomlAccount) addField(key string, value any, order []string) error {
	a.order = append(a.order, key)

	switch v := value.(type) {
	case map[string]any:
		if _, ok := v["value"]; ok {
			a.scalars[key] = tableValue(v)
			return nil
		}
		if len(order) != len(v) {
			// Dotted keys are not reported by MetaData.Keys in nesting
			// order; fall back to sorted keys.
			order = make([]string, 0, len(v))
			for k := range v {
				order = append(order, k)
			}
			sort.Strings(order)
		}
		entries := make([]Entry, 0, len(v))
		for _, k := range order {
			entries = append(entries, member(k, v[k]))
		}
		a.multis[key] = entries
	case []map[string]any:
		entries := make([]Entry, 0, len(v))
		for i, m := range v {
			entries = append(entries, member(strconv.Itoa(i), m))
		}
		a.multis[key] = entries
	case []any:
		entries := make([]Entry, 0, len(v))
		for i, item := range v {
			entries = append(entries, member(strconv.Itoa(i), item))
		}
		a.multis[key] = entries
	default:
		a.scalars[key] = Value{Text: scalarText(v)}
	}
	return nil
}

func member(key string, value any) Entry {
	if m, ok := value.(map[string]any); ok {
		e := Entry{Key: key, Value: tableValue(m)}
		if d, ok := m["description"]; ok {
			e.Description = fmt.Sprint(d)
		}
		return e
	}
	return Entry{Key: key, Value: Value{Text: scalarText(value)}}
}

func tableValue(m map[string]any) Value {
	v := Value{Text: scalarText(m["value"])}
	if secret, ok := m["secret"].(bool); ok {
		v.Secret = secret
	}
	return v
}

func scalarText(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = scalarText(item)
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}

func stringList(v any) []string {
	switch v := v.(type) {
	case string:
		return strings.Fields(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return nil
}

func (a *tomlAccount) Name() string        { return a.name }
func (a *tomlAccount) Aliases() []string   { return a.aliases }
func (a *tomlAccount) Class() string       { return a.class }
func (a *tomlAccount) Description() string { return a.desc }

func (a *tomlAccount) Fields() []string {
	return a.order
}

func (a *tomlAccount) Scalar(name string) (Value, bool) {
	v, ok := a.scalars[name]
	return v, ok
}

func (a *tomlAccount) Multi(name string) ([]Entry, bool) {
	e, ok := a.multis[name]
	return e, ok
}

// Export returns the account file exactly as it was read.
func (a *tomlAccount) Export() ([]byte, error) {
	return a.raw, nil
}
