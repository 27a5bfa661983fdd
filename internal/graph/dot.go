package graph

import (
	"fmt"
	"strings"
)

// DOT renders the textual graph description consumed by the external
// renderer: one record-shaped node per table listing its columns, one
// labeled edge per foreign-key column pair.
func (g *Graph) DOT() string {
	var b strings.Builder
	b.WriteString("graph G {\n")
	b.WriteString("  node [shape=record, fontname=\"Arial\"];\n")
	b.WriteString("  edge [fontsize=12];\n")
	b.WriteString("  nodesep=1.0;\n")
	b.WriteString("  rankdir=TB;\n")

	for i, t := range g.nodes {
		columns := strings.Join(t.Headers, "|")
		fmt.Fprintf(&b, "  %d [label=<{<b><font point-size='16' color='red'>%s</font></b>|%s}>];\n",
			i, t.Name, columns)
	}
	for _, e := range g.edges {
		fmt.Fprintf(&b, "  %d -- %d [label=\"(%s, %s)\"];\n",
			e.From, e.To, e.Label.Local, e.Label.Ref)
	}

	b.WriteString("}\n")
	return b.String()
}
