package database

import (
	"database/sql"
	"fmt"
)

// schema is embedded so migrations work for test databases in temp dirs,
// not just a checked-out working tree.
//
// monsters_fts mirrors the text index the catalog declares over name and
// description. The list endpoint's substring search does not use it; it
// exists for search support as the catalog grows.
const schema = `
CREATE TABLE IF NOT EXISTS monsters (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL UNIQUE,
	category     TEXT NOT NULL CHECK (category IN ('统领', '妖', '精', '鬼', '怪')),
	image_url    TEXT NOT NULL,
	appearance   TEXT NOT NULL,
	distribution TEXT NOT NULL,
	description  TEXT NOT NULL,
	abilities    TEXT NOT NULL DEFAULT '[]',
	sources      TEXT NOT NULL DEFAULT '[]',
	lat          REAL,
	lng          REAL,
	created_at   TIMESTAMP NOT NULL,
	updated_at   TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_monsters_category ON monsters(category);
CREATE INDEX IF NOT EXISTS idx_monsters_created_at ON monsters(created_at);

CREATE VIRTUAL TABLE IF NOT EXISTS monsters_fts USING fts4(name, description);

CREATE TRIGGER IF NOT EXISTS monsters_fts_insert AFTER INSERT ON monsters BEGIN
	INSERT INTO monsters_fts(docid, name, description)
	VALUES (new.rowid, new.name, new.description);
END;

CREATE TRIGGER IF NOT EXISTS monsters_fts_delete AFTER DELETE ON monsters BEGIN
	DELETE FROM monsters_fts WHERE docid = old.rowid;
END;

CREATE TRIGGER IF NOT EXISTS monsters_fts_update AFTER UPDATE ON monsters BEGIN
	DELETE FROM monsters_fts WHERE docid = old.rowid;
	INSERT INTO monsters_fts(docid, name, description)
	VALUES (new.rowid, new.name, new.description);
END;
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
