// Package graphdb constructs the Neo4j driver for the relationship graph
// store. The graph store has an independent lifecycle from the catalog
// database: it is seeded separately and never reconciled with catalog
// mutations.
package graphdb

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type Config struct {
	URI      string
	User     string
	Password string
}

// Open builds a driver and verifies connectivity before handing it out,
// so a misconfigured graph store fails at startup rather than on the
// first query.
func Open(ctx context.Context, cfg Config) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("new neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}
	return driver, nil
}
