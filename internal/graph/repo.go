// Package graph queries the relationship graph store: Book and Monster
// nodes with typed, described edges between monsters. Nodes are identified
// by name in the graph, not by catalog id; the two stores are never joined.
package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"yaopedia/pkg/apperr"
)

type Node struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

type Link struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

type Book struct {
	Name string `json:"name"`
	Era  string `json:"era,omitempty"`
}

// Store is what the handler needs from the graph backend.
type Store interface {
	BookGraph(ctx context.Context, book string) (*Graph, error)
	Books(ctx context.Context) ([]Book, error)
}

type Repo struct {
	Driver neo4j.DriverWithContext
}

var _ Store = (*Repo)(nil)

func NewRepo(driver neo4j.DriverWithContext) *Repo {
	return &Repo{Driver: driver}
}

// bookGraphQuery walks every relationship touching a monster the named
// book contains. Results come back as (n)-[r]-(m) rows; nodes repeat
// across rows and are deduplicated by element id.
const bookGraphQuery = `
MATCH (book:Book {name: $book})
MATCH (n)-[r]-(m)
WHERE (book)-[:CONTAINS]->(n) OR (book)-[:CONTAINS]->(m)
RETURN DISTINCT n, r, m
`

// BookGraph materializes the subgraph for one book. A book with no linked
// monsters (or no such book at all) yields an empty graph, not an error;
// the two cases are deliberately indistinguishable here.
func (r *Repo) BookGraph(ctx context.Context, book string) (*Graph, error) {
	session := r.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, bookGraphQuery, map[string]any{"book": book})
	if err != nil {
		return nil, graphErr("book graph query", err)
	}

	g := &Graph{Nodes: []Node{}, Links: []Link{}}
	seen := make(map[string]struct{})

	for result.Next(ctx) {
		rec := result.Record()
		source, ok1 := nodeValue(rec, "n")
		target, ok2 := nodeValue(rec, "m")
		relValue, ok3 := rec.Get("r")
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		rel, ok := relValue.(dbtype.Relationship)
		if !ok {
			continue
		}

		addNode(g, seen, source)
		addNode(g, seen, target)
		g.Links = append(g.Links, Link{
			Source:      rel.StartElementId,
			Target:      rel.EndElementId,
			Type:        rel.Type,
			Description: stringProp(rel.Props, "description"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, graphErr("book graph result", err)
	}
	return g, nil
}

func (r *Repo) Books(ctx context.Context) ([]Book, error) {
	session := r.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (b:Book)
		RETURN b.name AS name, b.era AS era
		ORDER BY b.era
	`, nil)
	if err != nil {
		return nil, graphErr("list books query", err)
	}

	books := []Book{}
	for result.Next(ctx) {
		rec := result.Record()
		b := Book{}
		if v, ok := rec.Get("name"); ok {
			b.Name, _ = v.(string)
		}
		if v, ok := rec.Get("era"); ok {
			b.Era, _ = v.(string)
		}
		books = append(books, b)
	}
	if err := result.Err(); err != nil {
		return nil, graphErr("list books result", err)
	}
	return books, nil
}

func nodeValue(rec *neo4j.Record, key string) (dbtype.Node, bool) {
	v, ok := rec.Get(key)
	if !ok {
		return dbtype.Node{}, false
	}
	n, ok := v.(dbtype.Node)
	return n, ok
}

// addNode appends the node unless its element id was already collected.
// Type is the node's first label, matching how the views color nodes.
func addNode(g *Graph, seen map[string]struct{}, n dbtype.Node) {
	if _, dup := seen[n.ElementId]; dup {
		return
	}
	seen[n.ElementId] = struct{}{}

	node := Node{
		ID:         n.ElementId,
		Name:       stringProp(n.Props, "name"),
		Properties: n.Props,
	}
	if len(n.Labels) > 0 {
		node.Type = n.Labels[0]
	}
	g.Nodes = append(g.Nodes, node)
}

func stringProp(props map[string]any, key string) string {
	if v, ok := props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func graphErr(op string, err error) error {
	return apperr.E(apperr.KindUnavailable, "graph store query failed", fmt.Errorf("%s: %w", op, err))
}
