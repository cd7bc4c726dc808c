// Package seed loads catalog records and graph data from JSON files.
// The two loaders are independent, matching the two stores' lifecycles:
// the catalog loader is additive (conflicts are skipped), the graph loader
// wipes and reloads.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"yaopedia/internal/monster"
	"yaopedia/pkg/apperr"
	"yaopedia/pkg/models"
)

type MonsterSeeder struct {
	Repo *monster.Repo
	Log  *zap.Logger
}

// LoadFile reads a JSON array of monster payloads and creates each one.
// Records whose name already exists are skipped, so re-running the seed
// against a populated catalog is harmless.
func (s *MonsterSeeder) LoadFile(ctx context.Context, path string) (created, skipped int, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("read seed file: %w", err)
	}

	var entries []models.Monster
	if err := json.Unmarshal(b, &entries); err != nil {
		return 0, 0, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	for i := range entries {
		m := entries[i]
		if _, err := s.Repo.Create(ctx, &m); err != nil {
			if apperr.IsConflict(err) {
				s.Log.Info("seed entry already exists, skipping", zap.String("name", m.Name))
				skipped++
				continue
			}
			return created, skipped, fmt.Errorf("seed %q: %w", m.Name, err)
		}
		created++
	}
	return created, skipped, nil
}
