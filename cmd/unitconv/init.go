package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lemonberrylabs/unitconv/pkg/parser"
	"github.com/lemonberrylabs/unitconv/pkg/store"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init PATH",
	Short: "Write the standard unit catalog to PATH (.yaml, .json or .db)",
	Args:  cobra.ExactArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite an existing catalog")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := args[0]
	if force, _ := cmd.Flags().GetBool("force"); !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		// keep the comments of the shipped document
		if err := os.WriteFile(path, parser.StandardSource(), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote standard catalog to %s\n", path)
		return nil
	}

	us, err := parser.Standard()
	if err != nil {
		return err
	}
	p, err := store.PersisterFor(path)
	if err != nil {
		return err
	}
	if c, ok := p.(*store.SQLitePersister); ok {
		defer c.Close()
	}
	if err := p.Save(cmd.Context(), us); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d units to %s\n", len(us), path)
	return nil
}
