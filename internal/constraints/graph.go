package constraints

import (
	"sort"

	"github.com/funvibe/autotype/internal/token"
	"github.com/funvibe/autotype/internal/typesystem"
)

// Origin is where an edge was recorded, for error context.
type Origin struct {
	Token     token.Token
	Class     string
	Method    string
	Attribute string
}

// Edge ties two placeholders that must stay mutually narrowable.
type Edge struct {
	A, B   typesystem.AutoID
	Origin Origin
}

// Component is a connected set of placeholders.
type Component struct {
	Members []typesystem.AutoID
	Origin  Origin // origin of the first edge recorded in the component
}

// Graph is the undirected placeholder graph built while gathering. It
// stores handles only; the placeholders themselves live in the Context.
type Graph struct {
	edges []Edge
	adj   map[typesystem.AutoID][]typesystem.AutoID
	seen  map[[2]typesystem.AutoID]bool
	first map[typesystem.AutoID]int // first edge touching a node
}

func New() *Graph {
	return &Graph{
		adj:   make(map[typesystem.AutoID][]typesystem.AutoID),
		seen:  make(map[[2]typesystem.AutoID]bool),
		first: make(map[typesystem.AutoID]int),
	}
}

// Link records an edge between a and b when both are distinct
// placeholders. It reports whether a new edge was added.
func (g *Graph) Link(a, b typesystem.Type, origin Origin) bool {
	pa, ok := a.(*typesystem.TAuto)
	if !ok {
		return false
	}
	pb, ok := b.(*typesystem.TAuto)
	if !ok || pa.ID == pb.ID {
		return false
	}
	key := [2]typesystem.AutoID{pa.ID, pb.ID}
	if key[0] > key[1] {
		key[0], key[1] = key[1], key[0]
	}
	if g.seen[key] {
		return false
	}
	g.seen[key] = true
	for _, id := range key {
		if _, ok := g.first[id]; !ok {
			g.first[id] = len(g.edges)
		}
	}
	g.edges = append(g.edges, Edge{A: key[0], B: key[1], Origin: origin})
	g.adj[key[0]] = append(g.adj[key[0]], key[1])
	g.adj[key[1]] = append(g.adj[key[1]], key[0])
	return true
}

func (g *Graph) Len() int {
	return len(g.edges)
}

func (g *Graph) Edges() []Edge {
	return g.edges
}

// Peers returns the direct neighbours of id in ascending order.
func (g *Graph) Peers(id typesystem.AutoID) []typesystem.AutoID {
	out := append([]typesystem.AutoID(nil), g.adj[id]...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Components returns the connected components ordered by their smallest
// member, each with sorted members.
func (g *Graph) Components() []Component {
	nodes := make([]typesystem.AutoID, 0, len(g.adj))
	for id := range g.adj {
		nodes = append(nodes, id)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	visited := make(map[typesystem.AutoID]bool, len(nodes))
	var out []Component
	for _, start := range nodes {
		if visited[start] {
			continue
		}
		var members []typesystem.AutoID
		firstEdge := len(g.edges)
		stack := []typesystem.AutoID{start}
		visited[start] = true
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			members = append(members, id)
			if e := g.first[id]; e < firstEdge {
				firstEdge = e
			}
			for _, peer := range g.adj[id] {
				if !visited[peer] {
					visited[peer] = true
					stack = append(stack, peer)
				}
			}
		}
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		out = append(out, Component{Members: members, Origin: g.edges[firstEdge].Origin})
	}
	return out
}
