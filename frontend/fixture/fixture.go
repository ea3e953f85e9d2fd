// Package fixture builds syntax trees from a YAML description, for tests and
// for the tyck command, which has no parser of its own.
//
// A fixture is a sequence of statements:
//
//	- let: id
//	  params: [x]
//	  body: x
//	- let: two
//	  type: Int
//	  body: {binary: +, left: 1, right: 1}
//	- expr: {call: id, args: [{string: a}]}
//
// In expression position, an unquoted integer or boolean scalar is a constant, and
// any other scalar is a reference, qualified when dotted (M.x).
package fixture

import (
	"fmt"
	"go/token"
	"log/slog"
	"strings"
	"unicode"

	"github.com/cottand/tyck/frontend/cst"
	"github.com/cottand/tyck/internal/log"
	"gopkg.in/yaml.v3"
)

// Decode parses data as a fixture named name, and returns the finished source
// file. Positions are registered in fset.
func Decode(fset *token.FileSet, name string, data []byte) (*cst.SourceFile, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	file := fset.AddFile(name, -1, len(data))
	file.SetLinesForContent(data)
	d := &decoder{
		name:   name,
		file:   file,
		logger: log.DefaultLogger.With("section", "fixture", "file", name),
	}

	source := &cst.SourceFile{Name: name}
	source.SetRange(cst.Range{PosStart: file.Pos(0), PosEnd: file.Pos(len(data))})
	if len(root.Content) > 0 {
		elems, err := d.stmts(root.Content[0])
		if err != nil {
			return nil, err
		}
		source.Elements = elems
	}
	cst.Finish(source)
	d.logger.Debug("decoded fixture", "statements", len(source.Elements))
	return source, nil
}

// MustDecode is Decode for tests, with a FileSet of its own. It panics on error.
func MustDecode(name, src string) *cst.SourceFile {
	source, err := Decode(token.NewFileSet(), name, []byte(src))
	if err != nil {
		panic(err)
	}
	return source
}

type decoder struct {
	name   string
	file   *token.File
	logger *slog.Logger
}

func (d *decoder) errorf(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%s:%d:%d: %s", d.name, n.Line, n.Column, fmt.Sprintf(format, args...))
}

// rangeOf is the range of n in the source. Scalars span their value; other
// nodes only their first character.
func (d *decoder) rangeOf(n *yaml.Node) cst.Range {
	if n.Line < 1 || n.Line > d.file.LineCount() {
		return cst.Range{}
	}
	start := d.file.LineStart(n.Line) + token.Pos(n.Column-1)
	end := start
	if n.Kind == yaml.ScalarNode && n.Style == 0 {
		end = start + token.Pos(len(n.Value))
	}
	if int(end) > d.file.Base()+d.file.Size() {
		end = token.Pos(d.file.Base() + d.file.Size())
	}
	return cst.Range{PosStart: start, PosEnd: end}
}

func at[N interface{ SetRange(cst.Range) }](d *decoder, n *yaml.Node, node N) N {
	node.SetRange(d.rangeOf(n))
	return node
}

type mapping struct {
	node   *yaml.Node
	keys   []string
	values map[string]*yaml.Node
}

func (d *decoder) mapping(n *yaml.Node) (*mapping, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "expected a mapping, found %s", describe(n))
	}
	m := &mapping{node: n, values: make(map[string]*yaml.Node, len(n.Content)/2)}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if _, ok := m.values[key]; ok {
			return nil, d.errorf(n.Content[i], "duplicate key %q", key)
		}
		m.keys = append(m.keys, key)
		m.values[key] = n.Content[i+1]
	}
	return m, nil
}

func (m *mapping) get(key string) (*yaml.Node, bool) {
	v, ok := m.values[key]
	return v, ok
}

// keyNode is the node of key itself, for positions.
func (m *mapping) keyNode(key string) *yaml.Node {
	for i := 0; i+1 < len(m.node.Content); i += 2 {
		if m.node.Content[i].Value == key {
			return m.node.Content[i]
		}
	}
	return m.node
}

// only checks that m has no keys beyond allowed.
func (d *decoder) only(m *mapping, allowed ...string) error {
	for _, key := range m.keys {
		found := false
		for _, a := range allowed {
			found = found || a == key
		}
		if !found {
			return d.errorf(m.keyNode(key), "unexpected key %q, expected one of %s", key, strings.Join(allowed, ", "))
		}
	}
	return nil
}

func (d *decoder) sequence(n *yaml.Node) ([]*yaml.Node, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, d.errorf(n, "expected a sequence, found %s", describe(n))
	}
	return n.Content, nil
}

func (d *decoder) scalar(n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", d.errorf(n, "expected a scalar, found %s", describe(n))
	}
	return n.Value, nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func describe(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "a mapping"
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.ScalarNode:
		return fmt.Sprintf("scalar %q", n.Value)
	case yaml.AliasNode:
		return "an alias"
	}
	return "an empty document"
}

func splitPath(dotted string) ([]string, string) {
	parts := strings.Split(dotted, ".")
	return parts[:len(parts)-1], parts[len(parts)-1]
}

func isTypeName(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}
