// Package graph models the schema graph: an undirected graph whose nodes
// are table descriptors and whose edges are the foreign-key column pairs
// linking them. Nodes live in an index-addressed arena and edges are
// (from, to, label) triples, which keeps the structure serializable and
// free of pointer cycles.
package graph

import (
	"sort"

	"github.com/MaxwellKnight/csvg/internal/errs"
	"github.com/MaxwellKnight/csvg/internal/table"
)

// Label is the column pair that justified an edge: the referencing
// table's column and the referenced table's column.
type Label struct {
	Local string `json:"local"`
	Ref   string `json:"ref"`
}

// Edge connects two nodes by arena index.
type Edge struct {
	From  int   `json:"from"`
	To    int   `json:"to"`
	Label Label `json:"label"`
}

// Graph is an undirected schema graph. Node indices are stable for the
// lifetime of one Graph value but not across rebuilds.
type Graph struct {
	nodes []*table.Descriptor
	edges []Edge
	adj   [][]int // neighbor node indices, kept in ascending order
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{}
}

// Build constructs the schema graph for the given tables. One node is
// added per table; one edge is added per foreign key whose referenced
// table exists among the nodes. A foreign key pointing at an unknown
// table is silently skipped.
func Build(tables []*table.Descriptor) *Graph {
	g := New()
	byName := make(map[string]int, len(tables))
	for _, t := range tables {
		byName[t.Name] = g.AddNode(t)
	}

	for from, t := range tables {
		for _, fk := range t.ForeignKeys {
			to, ok := byName[fk.RefTable]
			if !ok {
				continue
			}
			g.AddEdge(from, to, Label{Local: fk.Column, Ref: fk.RefColumn})
		}
	}
	return g
}

// AddNode appends a node and returns its index.
func (g *Graph) AddNode(t *table.Descriptor) int {
	g.nodes = append(g.nodes, t)
	g.adj = append(g.adj, nil)
	return len(g.nodes) - 1
}

// AddEdge adds an undirected edge between from and to.
func (g *Graph) AddEdge(from, to int, label Label) {
	g.edges = append(g.edges, Edge{From: from, To: to, Label: label})
	g.adj[from] = insertSorted(g.adj[from], to)
	g.adj[to] = insertSorted(g.adj[to], from)
}

func insertSorted(neighbors []int, n int) []int {
	i := sort.SearchInts(neighbors, n)
	neighbors = append(neighbors, 0)
	copy(neighbors[i+1:], neighbors[i:])
	neighbors[i] = n
	return neighbors
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns the descriptor at index i.
func (g *Graph) Node(i int) *table.Descriptor { return g.nodes[i] }

// Edges returns the edge list in insertion order.
func (g *Graph) Edges() []Edge { return g.edges }

// Neighbors returns the node indices adjacent to i, ascending.
func (g *Graph) Neighbors(i int) []int { return g.adj[i] }

// FindNode returns the index of the node whose table name matches name
// exactly (extractors lower-case names at extraction time).
func (g *Graph) FindNode(name string) (int, error) {
	for i, t := range g.nodes {
		if t.Name == name {
			return i, nil
		}
	}
	return 0, errs.TableNotFound(name)
}

// ShortestPath returns the node sequence of an unweighted shortest path
// from start to end, inclusive of both. Neighbors are explored in
// ascending node-index order, so ties between equally short paths resolve
// deterministically toward lower-indexed nodes. start == end yields the
// single-node path.
func (g *Graph) ShortestPath(start, end int) ([]int, error) {
	if start == end {
		return []int{start}, nil
	}

	parent := make([]int, len(g.nodes))
	for i := range parent {
		parent[i] = -1
	}
	parent[start] = start

	queue := []int{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.adj[cur] {
			if parent[next] != -1 {
				continue
			}
			parent[next] = cur
			if next == end {
				return reconstruct(parent, start, end), nil
			}
			queue = append(queue, next)
		}
	}
	return nil, errs.PathNotFound(g.nodes[start].Name, g.nodes[end].Name)
}

func reconstruct(parent []int, start, end int) []int {
	var path []int
	for cur := end; cur != start; cur = parent[cur] {
		path = append(path, cur)
	}
	path = append(path, start)
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// PathNames maps a node-index path to table names.
func (g *Graph) PathNames(path []int) []string {
	names := make([]string, len(path))
	for i, n := range path {
		names[i] = g.nodes[n].Name
	}
	return names
}

// MinimumSpanningTree returns a spanning forest of the graph. All edges
// have unit weight, so Kruskal's algorithm reduces to scanning edges in
// insertion order and keeping each edge that connects two components.
// The first-discovered edge wins ties.
func (g *Graph) MinimumSpanningTree() *Graph {
	mst := New()
	for _, t := range g.nodes {
		mst.AddNode(t)
	}

	comp := make([]int, len(g.nodes))
	for i := range comp {
		comp[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if comp[i] != i {
			comp[i] = find(comp[i])
		}
		return comp[i]
	}

	for _, e := range g.edges {
		a, b := find(e.From), find(e.To)
		if a == b {
			continue
		}
		comp[a] = b
		mst.AddEdge(e.From, e.To, e.Label)
	}
	return mst
}
