package configs

import (
	"fmt"

	pmerrors "github.com/PolarWolf314/postmortem/internal/errors"
	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
)

type nodeKind int

const (
	nullNode nodeKind = iota
	scalarNode
	mapNode
	seqNode
)

// node is a settings value that remembers where it came from.
type node struct {
	kind    nodeKind
	line    int
	value   string
	entries []*entry
	items   []*node
}

type entry struct {
	key   string
	line  int
	value *node
}

// parseYAML parses the settings document into a node tree. The goccy AST is
// used rather than plain unmarshaling so every value keeps its source line.
func parseYAML(data []byte, name string) (*node, error) {
	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return nil, &pmerrors.ConfigError{File: name, Msg: yaml.FormatError(err, false, true)}
	}

	if len(file.Docs) > 1 {
		return nil, &pmerrors.ConfigError{File: name, Msg: "expected a single document"}
	}
	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		return &node{kind: mapNode}, nil
	}

	root, err := convert(file.Docs[0].Body, name)
	if err != nil {
		return nil, err
	}
	switch root.kind {
	case nullNode:
		return &node{kind: mapNode}, nil
	case mapNode:
		return root, nil
	}
	return nil, &pmerrors.ConfigError{File: name, Line: root.line, Msg: "expected a mapping at the top level"}
}

func lineOf(n ast.Node) int {
	if n == nil {
		return 0
	}
	if tk := n.GetToken(); tk != nil && tk.Position != nil {
		return tk.Position.Line
	}
	return 0
}

func convert(n ast.Node, name string) (*node, error) {
	line := lineOf(n)

	switch v := n.(type) {
	case nil:
		return &node{kind: nullNode}, nil
	case *ast.NullNode:
		return &node{kind: nullNode, line: line}, nil
	case *ast.CommentGroupNode:
		return &node{kind: nullNode, line: line}, nil
	case *ast.TagNode:
		return convert(v.Value, name)
	case *ast.AnchorNode:
		return convert(v.Value, name)
	case *ast.AliasNode:
		return nil, &pmerrors.ConfigError{File: name, Line: line, Msg: "aliases are not supported, use an @reference instead"}
	case *ast.StringNode:
		return &node{kind: scalarNode, line: line, value: v.Value}, nil
	case *ast.LiteralNode:
		return &node{kind: scalarNode, line: line, value: v.Value.Value}, nil
	case *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode, *ast.InfinityNode, *ast.NanNode:
		// Keep the source text: key ids such as 0x1A2B3C4D must not be
		// reinterpreted as numbers.
		return &node{kind: scalarNode, line: line, value: n.GetToken().Value}, nil
	case *ast.MappingNode:
		out := &node{kind: mapNode, line: line}
		for _, mv := range v.Values {
			e, err := convertPair(mv, name)
			if err != nil {
				return nil, err
			}
			out.entries = append(out.entries, e)
		}
		return out, nil
	case *ast.MappingValueNode:
		e, err := convertPair(v, name)
		if err != nil {
			return nil, err
		}
		return &node{kind: mapNode, line: line, entries: []*entry{e}}, nil
	case *ast.SequenceNode:
		out := &node{kind: seqNode, line: line}
		for _, item := range v.Values {
			c, err := convert(item, name)
			if err != nil {
				return nil, err
			}
			out.items = append(out.items, c)
		}
		return out, nil
	}
	return nil, &pmerrors.ConfigError{File: name, Line: line, Msg: fmt.Sprintf("unsupported value %q", n.String())}
}

func convertPair(mv *ast.MappingValueNode, name string) (*entry, error) {
	value, err := convert(mv.Value, name)
	if err != nil {
		return nil, err
	}
	key := ""
	if tk := mv.Key.GetToken(); tk != nil {
		key = tk.Value
	}
	e := &entry{key: key, line: lineOf(mv.Key), value: value}
	if value.line == 0 {
		value.line = e.line
	}
	return e, nil
}
