package graph

import (
	"encoding/json"

	"github.com/MaxwellKnight/csvg/internal/errs"
	"github.com/MaxwellKnight/csvg/internal/table"
)

// Serializable is the node-list/edge-list form of a Graph used by the
// persistence store. Edges refer to nodes by list ordinal; ordinals are
// stable within one round-trip only, not across rebuilds.
type Serializable struct {
	Nodes []*table.Descriptor `json:"nodes"`
	Edges []Edge              `json:"edges"`
}

// ToSerializable flattens the graph for persistence.
func (g *Graph) ToSerializable() *Serializable {
	return &Serializable{
		Nodes: g.nodes,
		Edges: append([]Edge(nil), g.edges...),
	}
}

// FromSerializable reconstructs a graph equivalent to the one that was
// flattened: same node and edge counts, adjacency rebuilt.
func FromSerializable(s *Serializable) *Graph {
	g := New()
	for _, n := range s.Nodes {
		g.AddNode(n)
	}
	for _, e := range s.Edges {
		g.AddEdge(e.From, e.To, e.Label)
	}
	return g
}

// MarshalJSON encodes the graph in its serializable form.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.ToSerializable())
}

// UnmarshalJSON decodes a graph from its serializable form.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var s Serializable
	if err := json.Unmarshal(data, &s); err != nil {
		return errs.IO("decoding graph", err)
	}
	*g = *FromSerializable(&s)
	return nil
}
