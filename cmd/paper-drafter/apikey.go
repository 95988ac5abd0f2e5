// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-drafter/internal/secrets"
	"github.com/pdiddy/paper-drafter/pkg/types"
)

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Store, show or remove the generation API key",
	Long: `Apikey manages the key files in the secrets directory. The key for the
configured backend (or --backend) is stored in openai-api-key or
anthropic-api-key with owner-only permissions.`,
}

func keyName(cmd *cobra.Command) (string, error) {
	backend, _ := cmd.Flags().GetString("backend")
	if backend == "" {
		cfg, err := loadConfig()
		if err != nil {
			return "", err
		}
		return secrets.KeyName(cfg.Generation.Backend), nil
	}
	switch b := types.GenerationBackend(backend); b {
	case types.BackendOpenAI, types.BackendClaude:
		return secrets.KeyName(b), nil
	default:
		return "", fmt.Errorf("unknown backend %q: use openai or claude", backend)
	}
}

func secretsDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("secrets-dir")
	return dir
}

var apikeySetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store the API key (read from stdin when not given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := keyName(cmd)
		if err != nil {
			return err
		}
		var value string
		if len(args) == 1 {
			value = args[0]
		} else {
			fmt.Fprint(os.Stderr, "API key: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("reading key: %w", err)
			}
			value = strings.TrimSpace(line)
		}
		if err := secrets.Save(secretsDir(cmd), name, value); err != nil {
			return err
		}
		fmt.Printf("Saved %s (%s)\n", name, secrets.Mask(value))
		return nil
	},
}

var apikeyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored API key, masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := keyName(cmd)
		if err != nil {
			return err
		}
		v, ok := loadedSecrets[name]
		if !ok {
			fmt.Printf("%s: not set\n", name)
			return nil
		}
		fmt.Printf("%s: %s\n", name, secrets.Mask(v))
		return nil
	},
}

var apikeyRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Delete the stored API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := keyName(cmd)
		if err != nil {
			return err
		}
		if err := secrets.Remove(secretsDir(cmd), name); err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", name)
		return nil
	},
}

func init() {
	apikeyCmd.PersistentFlags().String("backend", "", "backend whose key to manage: openai or claude (default from config)")

	apikeyCmd.AddCommand(apikeySetCmd)
	apikeyCmd.AddCommand(apikeyShowCmd)
	apikeyCmd.AddCommand(apikeyRemoveCmd)

	rootCmd.AddCommand(apikeyCmd)
}
