package warden

import "github.com/duskfall/warden/pkg/warden/parser"

// ExtractCapabilities walks a parsed program and collects the capability
// names it references: identifiers used as call targets, the roots of
// member accesses, and member property names. Names are bare (namespace
// qualification happens during pricing) and returned in first-seen order
// with duplicates removed.
//
// The collection over-approximates: local variables and helper functions
// show up alongside real capabilities. That is harmless because names
// absent from every cost table price at zero.
func ExtractCapabilities(program *parser.Program) []string {
	c := &collector{seen: make(map[string]bool)}
	c.walk(program)
	return c.names
}

type collector struct {
	names []string
	seen  map[string]bool
}

func (c *collector) add(name string) {
	if name == "" || c.seen[name] {
		return
	}
	c.seen[name] = true
	c.names = append(c.names, name)
}

func (c *collector) walk(n parser.Node) {
	switch node := n.(type) {
	case *parser.CallExpression:
		if ident, ok := node.Function.(*parser.Identifier); ok {
			c.add(ident.Value)
		}
	case *parser.MemberExpression:
		if ident, ok := node.Object.(*parser.Identifier); ok {
			c.add(ident.Value)
		}
		if node.Property != nil {
			c.add(node.Property.Value)
		}
	}

	for _, child := range parser.Children(n) {
		c.walk(child)
	}
}
