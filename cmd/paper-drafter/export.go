// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-drafter/internal/container"
	"github.com/pdiddy/paper-drafter/internal/draft"
	"github.com/pdiddy/paper-drafter/internal/export"
	"github.com/pdiddy/paper-drafter/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export <latex|bibtex|json|yaml|pdf>",
	Short: "Export the paper",
	Long: `Export writes the project as a LaTeX document, a BibTeX file with one
entry per derived reference plus the citation library, or the paper and its
reference list as JSON or YAML. The pdf format compiles the LaTeX export in a
TeX container (docker or podman). Output goes to stdout unless --output is
set.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"latex", "bibtex", "json", "yaml", "pdf"},
	RunE:      runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir := projectDir(cmd)
	editor, err := openProject(cfg, dir)
	if err != nil {
		return err
	}

	var out []byte
	switch args[0] {
	case "latex":
		tex, err := export.LaTeX(editor.Paper())
		if err != nil {
			return err
		}
		out = []byte(tex)
	case "bibtex":
		lib, err := draft.LoadLibrary(dir)
		if err != nil {
			return err
		}
		out = []byte(export.BibTeX(editor.References(), lib))
	case "json":
		out, err = export.JSON(editor.Paper())
	case "yaml":
		out, err = export.YAML(editor.Paper())
	case "pdf":
		out, err = exportPDF(cmd, dir, editor.Paper())
	default:
		return fmt.Errorf("unsupported format %q: use latex, bibtex, json, yaml or pdf", args[0])
	}
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(output, out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	fmt.Fprintf(os.Stderr, "Exported to %s\n", output)
	return nil
}

func exportPDF(cmd *cobra.Command, dir string, p types.Paper) ([]byte, error) {
	rt, err := container.DetectRuntime()
	if err != nil {
		return nil, err
	}
	lib, err := draft.LoadLibrary(dir)
	if err != nil {
		return nil, err
	}
	image, _ := cmd.Flags().GetString("tex-image")
	ctx, stop := signalContext()
	defer stop()
	return export.PDF(ctx, rt, image, p, lib, os.Stderr)
}

func init() {
	addProjectFlag(exportCmd)
	exportCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	exportCmd.Flags().String("tex-image", export.DefaultTeXImage, "container image used for the pdf format")

	rootCmd.AddCommand(exportCmd)
}
