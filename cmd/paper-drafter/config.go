// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-drafter/internal/document"
	"github.com/pdiddy/paper-drafter/internal/draft"
	"github.com/pdiddy/paper-drafter/internal/generate"
	"github.com/pdiddy/paper-drafter/internal/references"
	"github.com/pdiddy/paper-drafter/internal/secrets"
	"github.com/pdiddy/paper-drafter/pkg/types"
)

// envKeys are the conventional environment variables for each backend's
// key, consulted after the config and the secrets directory.
var envKeys = map[types.GenerationBackend]string{
	types.BackendOpenAI: "OPENAI_API_KEY",
	types.BackendClaude: "ANTHROPIC_API_KEY",
}

// setDefaults registers every config key so that PAPER_DRAFTER_* environment
// variables reach Unmarshal.
func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()
	g := d.Generation

	v.SetEnvPrefix("PAPER_DRAFTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("generation.timeout", g.Timeout)
	v.SetDefault("generation.user_agent", g.UserAgent)
	v.SetDefault("generation.backend", string(g.Backend))
	v.SetDefault("generation.model", g.Model)
	v.SetDefault("generation.api_key", g.APIKey)
	v.SetDefault("generation.max_retries", g.MaxRetries)
	v.SetDefault("generation.requests_per_second", g.RequestsPerSecond)
	v.SetDefault("generation.concurrency", g.Concurrency)
	v.SetDefault("generation.delay", g.Delay)
	v.SetDefault("references.title", d.References.Title)
	v.SetDefault("references.stale_policy", string(d.References.StalePolicy))
	v.SetDefault("session.path", d.Session.Path)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// loadConfig decodes and validates the configuration held by viper.
func loadConfig() (types.Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// apiKey resolves the key for backend: config first, then the secrets
// directory, then the conventional environment variable.
func apiKey(cfg types.AIConfig, loaded map[string]string) string {
	if cfg.APIKey != "" {
		return cfg.APIKey
	}
	if v := loaded[secrets.KeyName(cfg.Backend)]; v != "" {
		return v
	}
	backend := cfg.Backend
	if backend == "" {
		backend = types.BackendOpenAI
	}
	return os.Getenv(envKeys[backend])
}

func newSynchronizer(cfg types.Config) *references.Synchronizer {
	return references.New(
		references.WithTitle(cfg.References.Title),
		references.WithStalePolicy(cfg.References.StalePolicy),
		references.WithLogger(logger),
	)
}

// openProject loads a project directory into an editor.
func openProject(cfg types.Config, dir string) (*document.Editor, error) {
	paper, err := draft.LoadProject(dir)
	if err != nil {
		return nil, err
	}
	return document.NewEditor(paper,
		document.WithSynchronizer(newSynchronizer(cfg)),
		document.WithLogger(logger),
	), nil
}

// newDrafter builds the generation backend and a drafter bound to editor.
func newDrafter(cfg types.Config, editor *document.Editor) (*generate.Drafter, error) {
	gc := cfg.Generation
	gc.APIKey = apiKey(gc.AIConfig, loadedSecrets)
	backend, err := generate.NewBackend(gc.AIConfig)
	if err != nil {
		if errors.Is(err, generate.ErrNoAPIKey) {
			return nil, fmt.Errorf("%w: run 'paper-drafter apikey set' or set PAPER_DRAFTER_GENERATION_API_KEY or %s", err, envKeys[gc.Backend])
		}
		return nil, err
	}
	return generate.NewDrafter(backend, editor, gc, logger), nil
}

// projectDir returns the --project flag value.
func projectDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("project")
	if dir == "" {
		dir = "."
	}
	return dir
}

func addProjectFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String("project", ".", "paper project directory (contains outline.yaml)")
}
