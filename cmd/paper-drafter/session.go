// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-drafter/internal/document"
	"github.com/pdiddy/paper-drafter/internal/draft"
	"github.com/pdiddy/paper-drafter/internal/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Save and restore named snapshots of a project",
	Long: `Session stores snapshots of a project's paper and citation library in a
SQLite database, and restores them into a project directory.`,
}

func openSessions() (*session.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return session.Open(cfg.Session)
}

var sessionSaveCmd = &cobra.Command{
	Use:   "save [name]",
	Short: "Save the project as a new session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir := projectDir(cmd)
		editor, err := openProject(cfg, dir)
		if err != nil {
			return err
		}
		lib, err := draft.LoadLibrary(dir)
		if err != nil {
			return err
		}

		store, err := session.Open(cfg.Session)
		if err != nil {
			return err
		}
		defer store.Close()

		sess := &session.Session{Paper: editor.Paper(), Library: lib}
		if len(args) == 1 {
			sess.Name = args[0]
		}
		if err := store.Save(cmd.Context(), sess); err != nil {
			return err
		}
		fmt.Printf("Saved %s (%s)\n", sess.ID, sess.Name)
		return nil
	},
}

var sessionLoadCmd = &cobra.Command{
	Use:   "load <id>",
	Short: "Restore a session into the project directory",
	Long: `Load writes the session's outline, section files and library into the
project directory, replacing what is there. The References section is
resynchronised on the way in.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := session.Open(cfg.Session)
		if err != nil {
			return err
		}
		defer store.Close()

		sess, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		dir := projectDir(cmd)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating project directory: %w", err)
		}

		editor := document.NewEditor(sess.Paper,
			document.WithSynchronizer(newSynchronizer(cfg)),
			document.WithLogger(logger))
		if err := draft.SaveProject(dir, editor.Paper()); err != nil {
			return err
		}
		if err := draft.SaveLibrary(dir, sess.Library); err != nil {
			return err
		}
		fmt.Printf("Loaded %s (%s) into %s\n", sess.ID, sess.Name, dir)
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List saved sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessions()
		if err != nil {
			return err
		}
		defer store.Close()

		var rows []session.Summary
		if len(args) > 0 {
			rows, err = store.Search(cmd.Context(), strings.Join(args, " "))
		} else {
			rows, err = store.List(cmd.Context())
		}
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		}
		if len(rows) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		fmt.Fprintf(os.Stdout, "%-44s  %-30s  %-30s  %-8s  %s\n", "ID", "Name", "Title", "Sections", "Updated")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 140))
		for _, r := range rows {
			fmt.Fprintf(os.Stdout, "%-44s  %-30s  %-30s  %-8d  %s\n",
				r.ID, truncate(r.Name, 30), truncate(r.Title, 30), r.Sections, r.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessions()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}

func init() {
	addProjectFlag(sessionCmd)
	sessionListCmd.Flags().Bool("json", false, "output sessions as JSON")

	sessionCmd.AddCommand(sessionSaveCmd)
	sessionCmd.AddCommand(sessionLoadCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionDeleteCmd)

	rootCmd.AddCommand(sessionCmd)
}
