package utils

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	Addr          string
	DBPath        string
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
}

// LoadConfig resolves configuration from defaults, an optional yaopedia.yaml
// (cwd or ~/.yaopedia), and YAOPEDIA_* environment overrides, in increasing
// priority.
func LoadConfig() Config {
	v := viper.New()
	v.SetEnvPrefix("YAOPEDIA")
	v.AutomaticEnv()

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}

	v.SetDefault("addr", ":3000")
	v.SetDefault("db_path", filepath.Join(home, ".yaopedia", "data.db"))
	v.SetDefault("neo4j_uri", "bolt://localhost:7687")
	v.SetDefault("neo4j_user", "neo4j")
	v.SetDefault("neo4j_password", "")

	v.SetConfigName("yaopedia")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(filepath.Join(home, ".yaopedia"))
	// a missing config file is fine; env and defaults carry it
	_ = v.ReadInConfig()

	return Config{
		Addr:          v.GetString("addr"),
		DBPath:        v.GetString("db_path"),
		Neo4jURI:      v.GetString("neo4j_uri"),
		Neo4jUser:     v.GetString("neo4j_user"),
		Neo4jPassword: v.GetString("neo4j_password"),
	}
}
