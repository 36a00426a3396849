package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quarry-labs/askdoc/internal/core/domain"
)

var (
	askDocumentID  string
	askTopK        int
	askJSON        bool
	askInteractive bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about your documents",
	Long: `Answers a question using hybrid retrieval over the ingested corpus.

The question is routed by intent: answer questions run keyword + semantic
retrieval and grounded synthesis with citations; summarize, translate and
checklist requests run a single utility model call.

With --interactive, starts a conversational session that carries history
between turns.`,
	Args: cobra.ArbitraryArgs,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askDocumentID, "doc", "d", "", "restrict retrieval to one document ID")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (0 = configured default)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the result as JSON")
	askCmd.Flags().BoolVarP(&askInteractive, "interactive", "i", false, "start an interactive session")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		if err := initServices(); err != nil {
			return err
		}
	}

	opts := domain.QueryOptions{
		DocumentScope: askDocumentID,
		TopK:          askTopK,
	}

	if askInteractive {
		return runAskInteractive(cmd, opts)
	}

	if len(args) == 0 {
		return fmt.Errorf("a question is required (or use --interactive)")
	}
	question := strings.Join(args, " ")

	result := queryService.Process(cmd.Context(), question, nil, opts)
	return renderResult(cmd, result)
}

func runAskInteractive(cmd *cobra.Command, opts domain.QueryOptions) error {
	// Pick up prompt edits mid-session.
	if promptStore != nil {
		if err := promptStore.Watch(); err == nil {
			defer promptStore.Close() //nolint:errcheck
		}
	}

	bold := color.New(color.Bold).SprintFunc()
	cmd.Printf("%s %s\n", bold("askdoc"), version)
	cmd.Println("Ask a question and press Enter. Type 'exit' to quit.")
	cmd.Println()

	var history []domain.ChatMessage
	scanner := bufio.NewScanner(os.Stdin)
	prompt := color.New(color.FgGreen, color.Bold).SprintFunc()

	for {
		cmd.Print(prompt("You: "))
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if strings.EqualFold(question, "exit") {
			break
		}

		result := queryService.Process(cmd.Context(), question, history, opts)
		if err := renderResult(cmd, result); err != nil {
			return err
		}

		history = append(history,
			domain.ChatMessage{Role: "user", Content: question},
			domain.ChatMessage{Role: "assistant", Content: result.Answer},
		)
	}

	return scanner.Err()
}

func renderResult(cmd *cobra.Command, result domain.QueryResult) error {
	if askJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	answer := color.New(color.FgCyan).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	cmd.Println(answer(result.Answer))

	if len(result.Citations) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, c := range result.Citations {
			location := fmt.Sprintf("chunk %d", c.ChunkIndex)
			if c.Page != nil {
				location = fmt.Sprintf("page %d", *c.Page)
			}
			cmd.Printf("  [%d] %s (%s)\n", i+1, c.DocumentTitle, location)
			if c.Snippet != "" {
				cmd.Printf("      %s\n", dim(c.Snippet))
			}
		}
	}

	if result.Error != "" {
		cmd.Printf("\n%s %s\n", color.YellowString("Note:"), result.Error)
	}
	cmd.Println()

	return nil
}
