// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-drafter/internal/secrets"
	"github.com/pdiddy/paper-drafter/pkg/types"
)

func TestDecodeConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := decodeConfig(v)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig(), cfg)
}

func TestDecodeConfigEnvOverrides(t *testing.T) {
	t.Setenv("PAPER_DRAFTER_GENERATION_MODEL", "claude-sonnet")
	t.Setenv("PAPER_DRAFTER_GENERATION_BACKEND", "claude")
	t.Setenv("PAPER_DRAFTER_GENERATION_DELAY", "5s")
	t.Setenv("PAPER_DRAFTER_REFERENCES_STALE_POLICY", "remove")

	v := viper.New()
	setDefaults(v)

	cfg, err := decodeConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet", cfg.Generation.Model)
	assert.Equal(t, types.BackendClaude, cfg.Generation.Backend)
	assert.Equal(t, 5*time.Second, cfg.Generation.Delay)
	assert.Equal(t, types.StaleRemove, cfg.References.StalePolicy)
}

func TestDecodeConfigInvalid(t *testing.T) {
	t.Setenv("PAPER_DRAFTER_REFERENCES_STALE_POLICY", "shred")

	v := viper.New()
	setDefaults(v)

	_, err := decodeConfig(v)
	assert.Error(t, err)
}

func TestAPIKeyPrecedence(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("ANTHROPIC_API_KEY", "")

	openai := types.AIConfig{Backend: types.BackendOpenAI}
	loaded := map[string]string{secrets.OpenAIKey: "from-secrets"}

	tests := []struct {
		name   string
		cfg    types.AIConfig
		loaded map[string]string
		want   string
	}{
		{"config wins", types.AIConfig{Backend: types.BackendOpenAI, APIKey: "from-config"}, loaded, "from-config"},
		{"secrets next", openai, loaded, "from-secrets"},
		{"env last", openai, nil, "from-env"},
		{"claude reads its own file", types.AIConfig{Backend: types.BackendClaude}, loaded, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apiKey(tt.cfg, tt.loaded))
		})
	}
}
