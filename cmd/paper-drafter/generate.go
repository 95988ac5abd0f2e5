// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-drafter/internal/document"
	"github.com/pdiddy/paper-drafter/internal/draft"
	"github.com/pdiddy/paper-drafter/internal/generate"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate section text with the configured AI backend",
	Long: `Generate drafts sections, the abstract, figure captions and rewrites for a
project. Generated text may carry [CITE: reason] markers; the References
section is resynchronised after every change and the project is saved.`,
}

// generation bundles what every generate subcommand needs.
type generation struct {
	dir     string
	editor  *document.Editor
	drafter *generate.Drafter
}

func openGeneration(cmd *cobra.Command) (*generation, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if c, _ := cmd.Flags().GetInt("concurrency"); c > 0 {
		cfg.Generation.Concurrency = c
	}
	dir := projectDir(cmd)
	editor, err := openProject(cfg, dir)
	if err != nil {
		return nil, err
	}
	drafter, err := newDrafter(cfg, editor)
	if err != nil {
		return nil, err
	}
	return &generation{dir: dir, editor: editor, drafter: drafter}, nil
}

func (g *generation) save() error {
	return draft.SaveProject(g.dir, g.editor.Paper())
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

var generateSectionCmd = &cobra.Command{
	Use:   "section [id...]",
	Short: "Draft the named sections",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := openGeneration(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()

		for _, id := range args {
			res, err := g.drafter.DraftSection(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "drafted  %s\n", id)
			if res.Changed() {
				printSync(res)
			}
		}
		return g.save()
	},
}

var generateAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Draft every section that has no text yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := openGeneration(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()

		summary, runErr := g.drafter.DraftAll(ctx, os.Stdout)
		// Keep whatever was drafted before a cancellation or failure.
		if err := g.save(); err != nil {
			return err
		}
		if runErr != nil {
			return runErr
		}
		fmt.Fprintf(os.Stdout, "\n%d drafted, %d skipped, %d failed\n", summary.Drafted, summary.Skipped, summary.Failed)
		if summary.HasFailures() {
			return fmt.Errorf("%d section(s) failed generation", summary.Failed)
		}
		return nil
	},
}

var generateAbstractCmd = &cobra.Command{
	Use:   "abstract",
	Short: "Write the Abstract from the other drafted sections",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := openGeneration(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()

		if _, err := g.drafter.GenerateAbstract(ctx); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, g.editor.Abstract())
		return g.save()
	},
}

var generateTitlesCmd = &cobra.Command{
	Use:   "titles",
	Short: "Suggest alternative paper titles",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := openGeneration(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()

		titles, err := g.drafter.SuggestTitles(ctx)
		if err != nil {
			return err
		}
		for i, t := range titles {
			fmt.Fprintf(os.Stdout, "%d. %s\n", i+1, t)
		}
		return nil
	},
}

var generateCaptionCmd = &cobra.Command{
	Use:   "caption <section-id> <figure-id>",
	Short: "Write a caption for a figure",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := openGeneration(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()

		caption, err := g.drafter.GenerateCaption(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, caption)
		return g.save()
	},
}

var generateRewriteCmd = &cobra.Command{
	Use:   "rewrite <section-id>",
	Short: "Rewrite a passage of a section",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		selected, _ := cmd.Flags().GetString("selected")
		instructions, _ := cmd.Flags().GetString("instructions")
		if selected == "" {
			return fmt.Errorf("--selected is required")
		}

		g, err := openGeneration(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()

		text, res, err := g.drafter.Rewrite(ctx, args[0], selected, instructions)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, text)
		if res.Changed() {
			printSync(res)
		}
		return g.save()
	},
}

func init() {
	addProjectFlag(generateCmd)
	generateCmd.PersistentFlags().Int("concurrency", 0, "sections drafted at once (default from config)")

	generateRewriteCmd.Flags().String("selected", "", "text to rewrite (must occur in the section)")
	generateRewriteCmd.Flags().String("instructions", "", "how to improve the text")

	generateCmd.AddCommand(generateSectionCmd)
	generateCmd.AddCommand(generateAllCmd)
	generateCmd.AddCommand(generateAbstractCmd)
	generateCmd.AddCommand(generateTitlesCmd)
	generateCmd.AddCommand(generateCaptionCmd)
	generateCmd.AddCommand(generateRewriteCmd)

	rootCmd.AddCommand(generateCmd)
}
