package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-analyzer/internal/config"
	"github.com/jonathan/cv-analyzer/internal/llm"
	"github.com/jonathan/cv-analyzer/internal/rendering"
)

func TestLoadSettings_DefaultsAndEnv(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "test-key")
	t.Setenv(config.EnvDatabaseURL, "")

	cfg, err := loadSettings(&cobra.Command{}, nil)
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.APIKey)
	assert.Equal(t, "template_1.tex", cfg.Template)
	assert.Equal(t, config.ReportText, cfg.ReportFormat)
	assert.NotEmpty(t, cfg.Gateway.Models)
	assert.Equal(t, 8000, cfg.Port)
}

func TestLoadSettings_FileThenOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("role: Data Engineer\nreport_format: pdf\n"), 0o644))

	old := configPath
	configPath = path
	t.Cleanup(func() { configPath = old })

	cfg, err := loadSettings(&cobra.Command{}, func(c *config.Config) {
		c.Role = "Platform Engineer"
	})
	require.NoError(t, err)
	assert.Equal(t, "Platform Engineer", cfg.Role)
	assert.Equal(t, config.ReportPDF, cfg.ReportFormat)
}

func TestLoadSettings_Invalid(t *testing.T) {
	_, err := loadSettings(&cobra.Command{}, func(c *config.Config) {
		c.ReportFormat = "docx"
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config error")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	log := newLogger(config.Config{Verbose: true, LogFormat: "json"}, &buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	log.WithField("stage", "gap").Debug("stage started")
	assert.Contains(t, buf.String(), `"stage":"gap"`)

	log = newLogger(config.Config{}, &buf)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())
}

func TestReportRenderer(t *testing.T) {
	assert.IsType(t, rendering.TextReportRenderer{}, reportRenderer(config.Config{ReportFormat: config.ReportText}))

	r := reportRenderer(config.Config{ReportFormat: config.ReportPDF, ChromePath: "/usr/bin/chromium"})
	require.IsType(t, rendering.PDFReportRenderer{}, r)
	assert.Equal(t, "/usr/bin/chromium", r.(rendering.PDFReportRenderer).ChromePath)
}

func TestNewGateway_RequiresAPIKey(t *testing.T) {
	_, _, err := newGateway(t.Context(), config.Config{}, logrus.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvAPIKey)
}

func TestPrintModels(t *testing.T) {
	models := []llm.ModelInfo{
		{Name: "models/gemini-flash-latest", DisplayName: "Flash", Methods: []string{"generateContent"}},
		{Name: "models/embedding-001", DisplayName: "Embedding", Methods: []string{"embedContent"}},
		{Name: "models/gemini-2.5-pro", DisplayName: "Pro", Methods: []string{"generateContent", "countTokens"}},
	}

	var out bytes.Buffer
	printModels(&out, models, false, []string{"models/gemini-2.5-pro"})
	text := out.String()
	assert.Contains(t, text, "1. models/gemini-2.5-pro")
	assert.Contains(t, text, "models/gemini-flash-latest")
	assert.NotContains(t, text, "embedding")

	out.Reset()
	printModels(&out, models, true, nil)
	assert.Contains(t, out.String(), "models/embedding-001")
}
