package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-analyzer/internal/config"
	"github.com/jonathan/cv-analyzer/internal/llm"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List Gemini models that support text generation",
	RunE:  runModels,
}

var modelsAll bool

func init() {
	modelsCmd.Flags().BoolVar(&modelsAll, "all", false, "Include models that cannot generate content")
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd, nil)
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("%s environment variable or --api-key flag is required", config.EnvAPIKey)
	}

	client, err := llm.NewGeminiClient(cmd.Context(), cfg.APIKey, llm.DefaultClientConfig())
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck

	models, err := client.ListModels(cmd.Context())
	if err != nil {
		return err
	}
	printModels(cmd.OutOrStdout(), models, modelsAll, cfg.Gateway.Models)
	return nil
}

// printModels writes one line per model, marking the models in the
// configured failover order with their position.
func printModels(out io.Writer, models []llm.ModelInfo, all bool, configured []string) {
	order := make(map[string]int, len(configured))
	for i, name := range configured {
		order[name] = i + 1
	}

	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	for _, m := range models {
		if !all && !m.SupportsGenerate() {
			continue
		}
		marker := "  "
		if pos, ok := order[m.Name]; ok {
			marker = fmt.Sprintf("%d.", pos)
		}
		fmt.Fprintf(out, "%s %-45s %s\n", marker, m.Name, m.DisplayName) //nolint:errcheck
	}
}
