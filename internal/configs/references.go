package configs

import (
	"fmt"
	"strings"

	pmerrors "github.com/PolarWolf314/postmortem/internal/errors"
	"github.com/PolarWolf314/postmortem/internal/utils"
)

// referenceMarker starts a string that names another top-level setting.
const referenceMarker = "@"

// expandReferences replaces every @name string in the tree with the value of
// the top-level setting name. Substituted values are expanded too, so chains
// of references resolve; a chain that loops back fails with ErrReferenceCycle.
func expandReferences(root *node, file string) error {
	top := make(map[string]*entry, len(root.entries))
	for _, e := range root.entries {
		top[utils.NormalizeKey(e.key)] = e
	}

	r := &resolver{file: file, top: top, done: make(map[string]bool)}
	for _, e := range root.entries {
		if _, err := r.resolve(utils.NormalizeKey(e.key), nil, e.line); err != nil {
			return err
		}
	}
	return nil
}

type resolver struct {
	file string
	top  map[string]*entry
	done map[string]bool
}

func (r *resolver) resolve(name string, chain []string, line int) (*node, error) {
	for i, seen := range chain {
		if seen == name {
			loop := append(append([]string{}, chain[i:]...), name)
			return nil, &pmerrors.ConfigError{
				File: r.file,
				Line: line,
				Msg:  fmt.Sprintf("%s: %s", pmerrors.ErrReferenceCycle, strings.Join(loop, " -> ")),
				Err:  pmerrors.ErrReferenceCycle,
			}
		}
	}

	target, ok := r.top[name]
	if !ok {
		return nil, &pmerrors.ConfigError{
			File: r.file,
			Line: line,
			Msg:  fmt.Sprintf("%s: %s%s", pmerrors.ErrUnknownReference, referenceMarker, name),
			Err:  pmerrors.ErrUnknownReference,
		}
	}
	if r.done[name] {
		return target.value, nil
	}

	expanded, err := r.walk(target.value, append(chain, name))
	if err != nil {
		return nil, err
	}
	target.value = expanded
	r.done[name] = true
	return expanded, nil
}

func (r *resolver) walk(n *node, chain []string) (*node, error) {
	switch n.kind {
	case scalarNode:
		if strings.HasPrefix(n.value, referenceMarker+referenceMarker) {
			return &node{kind: scalarNode, line: n.line, value: n.value[1:]}, nil
		}
		if strings.HasPrefix(n.value, referenceMarker) {
			target, err := r.resolve(utils.NormalizeKey(n.value[1:]), chain, n.line)
			if err != nil {
				return nil, err
			}
			return relocate(target, n.line), nil
		}
	case mapNode:
		for _, e := range n.entries {
			v, err := r.walk(e.value, chain)
			if err != nil {
				return nil, err
			}
			e.value = v
		}
	case seqNode:
		for i, item := range n.items {
			v, err := r.walk(item, chain)
			if err != nil {
				return nil, err
			}
			n.items[i] = v
		}
	}
	return n, nil
}

// relocate returns a copy of n with every line set to line, so errors in a
// substituted value point at the reference rather than its target.
func relocate(n *node, line int) *node {
	c := &node{kind: n.kind, line: line, value: n.value}
	for _, e := range n.entries {
		c.entries = append(c.entries, &entry{key: e.key, line: line, value: relocate(e.value, line)})
	}
	for _, item := range n.items {
		c.items = append(c.items, relocate(item, line))
	}
	return c
}
