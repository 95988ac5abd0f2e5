// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-drafter/internal/draft"
	"github.com/pdiddy/paper-drafter/internal/library"
	"github.com/pdiddy/paper-drafter/pkg/types"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the project's citation library",
	Long: `Library keeps bibliographic records alongside the paper in library.yaml.
Records become @article entries in the BibTeX export; they never change the
reference list derived from [CITE: reason] markers.`,
}

func openLibrary(cmd *cobra.Command) (*library.Library, string, error) {
	dir := projectDir(cmd)
	items, err := draft.LoadLibrary(dir)
	if err != nil {
		return nil, "", err
	}
	return library.New(items...), dir, nil
}

var libraryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a citation record",
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, dir, err := openLibrary(cmd)
		if err != nil {
			return err
		}
		var c types.LibraryCitation
		c.Title, _ = cmd.Flags().GetString("title")
		c.Authors, _ = cmd.Flags().GetString("authors")
		c.Journal, _ = cmd.Flags().GetString("journal")
		c.Year, _ = cmd.Flags().GetString("year")
		c.DOI, _ = cmd.Flags().GetString("doi")
		c.URL, _ = cmd.Flags().GetString("url")
		c.BibtexKey, _ = cmd.Flags().GetString("key")

		if resolve, _ := cmd.Flags().GetBool("resolve"); resolve && c.DOI != "" {
			var r library.MetadataResolver = library.MockResolver{}
			if c, err = r.Resolve(cmd.Context(), c); err != nil {
				return err
			}
		}

		added, err := lib.Add(c)
		if err != nil {
			return err
		}
		if err := draft.SaveLibrary(dir, lib.All()); err != nil {
			return err
		}
		fmt.Printf("Added %s (%s)\n", added.ID, added.BibtexKey)
		return nil
	},
}

var libraryListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List citation records, optionally filtered by title or author",
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, _, err := openLibrary(cmd)
		if err != nil {
			return err
		}
		items := lib.Search(strings.Join(args, " "))
		if len(items) == 0 {
			fmt.Println("No citations found.")
			return nil
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-50s  %-30s  %s\n", "Key", "Title", "Authors", "Year")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
		for _, c := range items {
			fmt.Fprintf(os.Stdout, "%-20s  %-50s  %-30s  %s\n",
				c.BibtexKey, truncate(c.Title, 50), truncate(c.Authors, 30), c.Year)
		}
		fmt.Fprintf(os.Stdout, "\n%d citations\n", len(items))
		return nil
	},
}

var libraryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a citation record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib, dir, err := openLibrary(cmd)
		if err != nil {
			return err
		}
		if err := lib.Delete(args[0]); err != nil {
			return err
		}
		if err := draft.SaveLibrary(dir, lib.All()); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	addProjectFlag(libraryCmd)

	libraryAddCmd.Flags().String("title", "", "title of the cited work")
	libraryAddCmd.Flags().String("authors", "", "comma-separated authors")
	libraryAddCmd.Flags().String("journal", "", "journal or venue")
	libraryAddCmd.Flags().String("year", "", "publication year")
	libraryAddCmd.Flags().String("doi", "", "digital object identifier")
	libraryAddCmd.Flags().String("url", "", "link to the work")
	libraryAddCmd.Flags().String("key", "", "BibTeX key (default: <first author's surname><year>)")
	libraryAddCmd.Flags().Bool("resolve", false, "look up metadata for --doi before adding")

	libraryCmd.AddCommand(libraryAddCmd)
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(libraryDeleteCmd)

	rootCmd.AddCommand(libraryCmd)
}
