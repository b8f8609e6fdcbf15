//go:build integration
// +build integration

package extraction

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-analyzer/internal/gateway"
	"github.com/jonathan/cv-analyzer/internal/llm"
)

func TestStructure_Integration(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, err := llm.NewGeminiClient(ctx, apiKey, llm.DefaultClientConfig())
	require.NoError(t, err)
	defer client.Close() //nolint:errcheck

	cfg := gateway.DefaultConfig()
	cfg.Cooldown = 10 * time.Second
	gw, err := gateway.New(client, cfg)
	require.NoError(t, err)

	cv := `Jane Doe
jane@example.com | Berlin

Experience
Senior Backend Engineer, Acme GmbH, 2019 - Present
- Built payment APIs in Go serving 2M requests per day
- Migrated services from VMs to Docker

Education
BSc Computer Science, TU Berlin, 2015

Skills: Go, Python, PostgreSQL, Docker`

	profile, err := New(gw, nil).Structure(ctx, cv)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", profile.PersonalInfo.Name)
	assert.NotEmpty(t, profile.Experience)
	assert.Contains(t, profile.Skills, "Go")
}
