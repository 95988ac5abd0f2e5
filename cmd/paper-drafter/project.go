// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-drafter/internal/document"
	"github.com/pdiddy/paper-drafter/internal/draft"
	"github.com/pdiddy/paper-drafter/internal/references"
	"github.com/pdiddy/paper-drafter/internal/watch"
	"github.com/pdiddy/paper-drafter/pkg/types"
)

// --- init ---

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a paper project with the standard section structure",
	Long: `Init writes outline.yaml and one empty section file for each of Abstract,
Introduction, Related Work, Methodology, Results, Discussion and Conclusion.
An existing outline is never overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	if _, err := os.Stat(filepath.Join(dir, draft.OutlineFile)); err == nil {
		return fmt.Errorf("%s already contains %s", dir, draft.OutlineFile)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}

	title, _ := cmd.Flags().GetString("title")
	authors, _ := cmd.Flags().GetString("authors")

	editor := document.NewEditor(types.Paper{Title: title, Authors: authors})
	editor.ApplyStandardStructure()
	if err := draft.SaveProject(dir, editor.Paper()); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Created project in %s\n", dir)
	return nil
}

// --- references ---

var referencesCmd = &cobra.Command{
	Use:   "references",
	Short: "Inspect and synchronise the References section",
	Long: `References derives the numbered reference list from the [CITE: reason]
markers in every section and keeps the References section file in step.`,
}

var referencesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the reference list derived from the section files",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		res, err := draft.Status(projectDir(cmd), newSynchronizer(cfg))
		if err != nil {
			return err
		}
		if len(res.References) == 0 {
			fmt.Println("No citations found.")
			return nil
		}
		for _, r := range res.References {
			fmt.Printf("[%d] %s\n", r.Index, r.Reason)
		}
		return nil
	},
}

var referencesSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Rewrite the References section file from the current markers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		res, err := draft.SyncProject(projectDir(cmd), newSynchronizer(cfg))
		if err != nil {
			return err
		}
		printSync(res)
		return nil
	},
}

var referencesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Exit non-zero when the References section is out of date",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		res, err := draft.Status(projectDir(cmd), newSynchronizer(cfg))
		if err != nil {
			return err
		}
		if res.Changed() {
			return fmt.Errorf("references out of date: sync would report %s", res.Action)
		}
		fmt.Println("References up to date.")
		return nil
	},
}

func printSync(res references.Result) {
	switch res.Action {
	case references.ActionNone:
		fmt.Printf("References unchanged (%d entries)\n", len(res.References))
	case references.ActionRemoved:
		fmt.Println("References section removed")
	default:
		fmt.Printf("References %s: %d entries\n", res.Action, len(res.References))
	}
}

// --- watch ---

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the References section current while section files change",
	Long: `Watch monitors the project directory and synchronises the References
section shortly after any section file or outline.yaml changes. Stop with
Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		debounce, _ := cmd.Flags().GetDuration("debounce")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err = watch.Watch(ctx, projectDir(cmd), newSynchronizer(cfg),
			watch.WithDebounce(debounce),
			watch.WithLogger(logger),
			watch.WithCallback(func(res references.Result, err error) {
				if err != nil {
					logger.Warn("sync failed", zap.Error(err))
					return
				}
				if res.Changed() {
					printSync(res)
				}
			}),
		)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	initCmd.Flags().String("title", "", "paper title")
	initCmd.Flags().String("authors", "", "author line")

	addProjectFlag(referencesCmd)
	referencesCmd.AddCommand(referencesListCmd)
	referencesCmd.AddCommand(referencesSyncCmd)
	referencesCmd.AddCommand(referencesCheckCmd)

	addProjectFlag(watchCmd)
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before synchronising")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(referencesCmd)
	rootCmd.AddCommand(watchCmd)
}
