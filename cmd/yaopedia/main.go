// Command yaopedia is the operator CLI: seeding both stores and quick
// catalog lookups against a running API server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yaopedia/internal/monster"
	"yaopedia/internal/seed"
	"yaopedia/pkg/client"
	"yaopedia/pkg/database"
	"yaopedia/pkg/graphdb"
	"yaopedia/pkg/utils"
)

var apiURL string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "yaopedia",
	Short:        "yaopedia manages the monster encyclopedia stores",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:3000", "base URL of the API server")

	seedCmd.AddCommand(seedMonstersCmd)
	seedCmd.AddCommand(seedGraphCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(booksCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load seed data into the catalog or graph store",
}

var seedMonstersCmd = &cobra.Command{
	Use:   "monsters <file>",
	Short: "Load monster records from a JSON file into the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer logger.Sync()

		cfg := utils.LoadConfig()
		db, err := database.Open(database.Config{Path: cfg.DBPath})
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.Migrate(db); err != nil {
			return err
		}

		seeder := &seed.MonsterSeeder{Repo: monster.NewRepo(db), Log: logger}
		created, skipped, err := seeder.LoadFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("seeded %d monsters (%d already present)\n", created, skipped)
		return nil
	},
}

var seedGraphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Wipe the graph store and reload it from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer logger.Sync()

		cfg := utils.LoadConfig()
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		driver, err := graphdb.Open(ctx, graphdb.Config{
			URI:      cfg.Neo4jURI,
			User:     cfg.Neo4jUser,
			Password: cfg.Neo4jPassword,
		})
		cancel()
		if err != nil {
			return err
		}
		defer driver.Close(cmd.Context())

		seeder := &seed.GraphSeeder{Driver: driver, Log: logger}
		if err := seeder.LoadFile(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("graph store seeded")
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List monsters from a running API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("type")
		search, _ := cmd.Flags().GetString("search")
		page, _ := cmd.Flags().GetInt("page")
		limit, _ := cmd.Flags().GetInt("limit")

		c := client.New(apiURL, nil)
		res := c.ListMonsters(cmd.Context(), client.ListOptions{
			Category: category,
			Search:   search,
			Page:     page,
			Limit:    limit,
		})
		return printJSON(res)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Fetch one monster by id from a running API server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(apiURL, nil)
		m, err := c.GetMonster(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(m)
	},
}

var booksCmd = &cobra.Command{
	Use:   "books [title]",
	Short: "List graph books, or dump one book's subgraph",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(apiURL, nil)
		if len(args) == 0 {
			books, err := c.Books(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(books)
		}
		g, err := c.BookGraph(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(g)
	},
}

func init() {
	listCmd.Flags().String("type", "", "filter by category")
	listCmd.Flags().String("search", "", "substring search over name and description")
	listCmd.Flags().Int("page", 1, "page number")
	listCmd.Flags().Int("limit", 50, "page size")
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
