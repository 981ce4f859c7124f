// Package main is the entry point for the unitconv command.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lemonberrylabs/unitconv/pkg/catalog"
	"github.com/lemonberrylabs/unitconv/pkg/parser"
	"github.com/lemonberrylabs/unitconv/pkg/store"
	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:          "unitconv",
	Short:        "Unit-aware calculator and conversion server",
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = version + " (commit=" + commit + ", built=" + date + ")"
	rootCmd.SetVersionTemplate("unitconv version {{.Version}}\n")

	rootCmd.PersistentFlags().String("catalog", "", "Unit catalog file: .yaml, .yml, .json, .db, .sqlite or .sqlite3 (env UNITCONV_CATALOG)")

	rootCmd.AddCommand(serveCmd, evalCmd, unitsCmd, initCmd, replCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func catalogPath(cmd *cobra.Command) string {
	path := os.Getenv("UNITCONV_CATALOG")
	if v, _ := cmd.Flags().GetString("catalog"); v != "" {
		path = v
	}
	return path
}

// openStore opens the catalog named by --catalog. Without one the store
// holds the built-in standard catalog in memory.
func openStore(ctx context.Context, cmd *cobra.Command) (*store.Store, error) {
	path := catalogPath(cmd)
	if path == "" {
		us, err := parser.Standard()
		if err != nil {
			return nil, fmt.Errorf("standard catalog: %w", err)
		}
		return store.New(catalog.New(us), nil), nil
	}

	p, err := store.PersisterFor(path)
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, p), nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
