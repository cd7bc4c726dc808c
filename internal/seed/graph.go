package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// BookSeed is one source document and the monsters it contains.
type BookSeed struct {
	Book     string        `json:"book"`
	Era      string        `json:"era,omitempty"`
	Monsters []MonsterSeed `json:"monsters"`
}

type MonsterSeed struct {
	Name          string             `json:"name"`
	Relationships []RelationshipSeed `json:"relationships,omitempty"`
}

// RelationshipSeed is a typed edge from the enclosing monster to Target.
// Type is an open string (同类, 演化, ...) that becomes the relationship
// label in the graph store.
type RelationshipSeed struct {
	Target      string `json:"target"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// relTypePattern restricts relationship labels to letters, digits and
// underscore. Labels are spliced into Cypher (relationship types cannot be
// parameterized), so anything else is rejected up front.
var relTypePattern = regexp.MustCompile(`^[\p{L}\p{N}_]+$`)

type cypherStmt struct {
	query  string
	params map[string]any
}

// bookStatements translates one book seed into the Cypher statements that
// materialize it: the Book node, MERGEd Monster nodes, CONTAINS edges and
// the typed monster-to-monster edges.
func bookStatements(b BookSeed) ([]cypherStmt, error) {
	if b.Book == "" {
		return nil, fmt.Errorf("book name is required")
	}

	stmts := []cypherStmt{{
		query:  `CREATE (b:Book {name: $name, era: $era})`,
		params: map[string]any{"name": b.Book, "era": b.Era},
	}}

	for _, m := range b.Monsters {
		if m.Name == "" {
			return nil, fmt.Errorf("book %q: monster name is required", b.Book)
		}
		stmts = append(stmts,
			cypherStmt{
				query:  `MERGE (m:Monster {name: $name})`,
				params: map[string]any{"name": m.Name},
			},
			cypherStmt{
				query: `MATCH (b:Book {name: $book})
					MATCH (m:Monster {name: $monster})
					CREATE (b)-[:CONTAINS]->(m)`,
				params: map[string]any{"book": b.Book, "monster": m.Name},
			},
		)

		for _, rel := range m.Relationships {
			if !relTypePattern.MatchString(rel.Type) {
				return nil, fmt.Errorf("book %q: invalid relationship type %q", b.Book, rel.Type)
			}
			if rel.Target == "" {
				return nil, fmt.Errorf("book %q: relationship target is required", b.Book)
			}
			stmts = append(stmts, cypherStmt{
				query: fmt.Sprintf(`MATCH (m1:Monster {name: $source})
					MERGE (m2:Monster {name: $target})
					CREATE (m1)-[:`+"`%s`"+` {description: $description}]->(m2)`, rel.Type),
				params: map[string]any{
					"source":      m.Name,
					"target":      rel.Target,
					"description": rel.Description,
				},
			})
		}
	}
	return stmts, nil
}

type GraphSeeder struct {
	Driver neo4j.DriverWithContext
	Log    *zap.Logger
}

// LoadFile wipes the graph store and reloads it from a JSON array of book
// seeds. The wipe-and-reload is deliberate: the graph has its own
// lifecycle and is never incrementally merged.
func (s *GraphSeeder) LoadFile(ctx context.Context, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read graph seed file: %w", err)
	}

	var books []BookSeed
	if err := json.Unmarshal(b, &books); err != nil {
		return fmt.Errorf("parse graph seed file %s: %w", path, err)
	}

	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	if _, err := session.Run(ctx, `MATCH (n) DETACH DELETE n`, nil); err != nil {
		return fmt.Errorf("wipe graph: %w", err)
	}
	s.Log.Info("graph store wiped")

	for _, book := range books {
		stmts, err := bookStatements(book)
		if err != nil {
			return err
		}
		for _, st := range stmts {
			if _, err := session.Run(ctx, st.query, st.params); err != nil {
				return fmt.Errorf("seed book %q: %w", book.Book, err)
			}
		}
		s.Log.Info("seeded book", zap.String("book", book.Book), zap.Int("monsters", len(book.Monsters)))
	}
	return nil
}
