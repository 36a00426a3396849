package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quarry-labs/askdoc/internal/adapters/driven/ai"
	"github.com/quarry-labs/askdoc/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View and configure providers, retrieval parameters, and storage.

Use subcommands to configure specific settings.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Sets a single configuration value.

Common keys:
  embedding.provider     ollama | openai
  embedding.model        e.g. nomic-embed-text
  embedding.dimensions   embedding vector width
  llm.provider           ollama | openai | anthropic
  llm.model              e.g. llama3, claude-sonnet-4-5
  retrieval.top_k        final result count
  retrieval.fusion_weight  semantic share of the fused score [0,1]
  storage.backend        sqlite | postgres
  storage.postgres_dsn   connection string for the postgres backend`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	RunE:  runConfigEmbedding,
}

var configLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the LLM provider",
	RunE:  runConfigLLM,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configEmbeddingCmd)
	configCmd.AddCommand(configLLMCmd)
	rootCmd.AddCommand(configCmd)
}

func ensureConfigStore() error {
	if configStore != nil {
		return nil
	}
	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	configStore = cfg
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if err := ensureConfigStore(); err != nil {
		return err
	}

	emb := ai.EmbeddingSettingsFromConfig(configStore)
	llm := ai.LLMSettingsFromConfig(configStore)

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	printProviderSettings(cmd, emb.Provider, emb.Model, emb.BaseURL, emb.APIKey, emb.IsConfigured())
	if emb.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", emb.Dimensions)
	}
	cmd.Println()

	cmd.Println("[LLM]")
	printProviderSettings(cmd, llm.Provider, llm.Model, llm.BaseURL, llm.APIKey, llm.IsConfigured())
	cmd.Println()

	cmd.Println("[Retrieval]")
	if k := configStore.GetInt("retrieval.top_k"); k > 0 {
		cmd.Printf("  Top K: %d\n", k)
	} else {
		cmd.Printf("  Top K: (default)\n")
	}
	if _, ok := configStore.Get("retrieval.fusion_weight"); ok {
		cmd.Printf("  Fusion weight: %.2f\n", configStore.GetFloat("retrieval.fusion_weight"))
	} else {
		cmd.Printf("  Fusion weight: (default)\n")
	}
	cmd.Println()

	cmd.Println("[Storage]")
	backend := configStore.GetString("storage.backend")
	if backend == "" {
		backend = "sqlite"
	}
	cmd.Printf("  Backend: %s\n", backend)

	return nil
}

func printProviderSettings(cmd *cobra.Command, provider, model, baseURL, apiKey string, configured bool) {
	if !configured {
		cmd.Println("  Provider: (not configured)")
		return
	}
	cmd.Printf("  Provider: %s\n", provider)
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if apiKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if err := ensureConfigStore(); err != nil {
		return err
	}

	key, raw := args[0], args[1]

	// Store numbers as numbers so typed getters work.
	var value any = raw
	if i, err := strconv.Atoi(raw); err == nil {
		value = i
	} else if f, err := strconv.ParseFloat(raw, 64); err == nil {
		value = f
	} else if b, err := strconv.ParseBool(raw); err == nil {
		value = b
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}

	cmd.Printf("Set %s = %v\n", key, value)
	return nil
}

func runConfigEmbedding(cmd *cobra.Command, _ []string) error {
	if err := ensureConfigStore(); err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	provider, err := promptProvider(cmd, reader, []string{ai.ProviderOllama, ai.ProviderOpenAI})
	if err != nil {
		return err
	}

	defaultModel := "nomic-embed-text"
	if provider == ai.ProviderOpenAI {
		defaultModel = "text-embedding-3-small"
	}
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	apiKey, err := promptAPIKey(cmd, reader, provider)
	if err != nil {
		return err
	}

	if err := configStore.Set("embedding.provider", provider); err != nil {
		return err
	}
	if err := configStore.Set("embedding.model", model); err != nil {
		return err
	}
	if apiKey != "" {
		if err := configStore.Set("embedding.api_key", apiKey); err != nil {
			return err
		}
	}

	cmd.Print("Validating configuration... ")
	if err := ai.ValidateEmbeddingConfig(ai.EmbeddingSettingsFromConfig(configStore)); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", provider, model)
	return nil
}

func runConfigLLM(cmd *cobra.Command, _ []string) error {
	if err := ensureConfigStore(); err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	provider, err := promptProvider(cmd, reader, []string{ai.ProviderOllama, ai.ProviderOpenAI, ai.ProviderAnthropic})
	if err != nil {
		return err
	}

	defaultModel := "llama3"
	switch provider {
	case ai.ProviderOpenAI:
		defaultModel = "gpt-4o-mini"
	case ai.ProviderAnthropic:
		defaultModel = "claude-sonnet-4-5"
	}
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	apiKey, err := promptAPIKey(cmd, reader, provider)
	if err != nil {
		return err
	}

	if err := configStore.Set("llm.provider", provider); err != nil {
		return err
	}
	if err := configStore.Set("llm.model", model); err != nil {
		return err
	}
	if apiKey != "" {
		if err := configStore.Set("llm.api_key", apiKey); err != nil {
			return err
		}
	}

	cmd.Print("Validating configuration... ")
	if err := ai.ValidateLLMConfig(ai.LLMSettingsFromConfig(configStore)); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n", provider, model)
	return nil
}

// Helper functions.

func promptProvider(cmd *cobra.Command, reader *bufio.Reader, providers []string) (string, error) {
	cmd.Println("Select provider:")
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p)
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	return providers[idx-1], nil
}

func promptAPIKey(cmd *cobra.Command, reader *bufio.Reader, provider string) (string, error) {
	if provider == ai.ProviderOllama {
		return "", nil
	}
	cmd.Print("Enter API key: ")
	apiKey := readLine(reader)
	if apiKey == "" {
		return "", errors.New("API key is required for this provider")
	}
	return apiKey, nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
