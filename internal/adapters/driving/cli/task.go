package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var taskJSON bool

var taskCmd = &cobra.Command{
	Use:   "task [action] [doc-id]",
	Short: "Run a utility task over a stored document",
	Long: `Runs a utility action over a Ready document's full text.

Actions:
  summarize  - Condense the document into a short summary
  translate  - Translate the document between the configured language pair
  checklist  - Extract a structured task checklist`,
	Args: cobra.ExactArgs(2),
	RunE: runTask,
}

func init() {
	taskCmd.Flags().BoolVar(&taskJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(taskCmd)
}

func runTask(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		if err := initServices(); err != nil {
			return err
		}
	}

	action, docID := args[0], args[1]

	result, err := queryService.ProcessDocumentTask(cmd.Context(), docID, action)
	if err != nil {
		return fmt.Errorf("task failed: %w", err)
	}

	if taskJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(result.Answer)
	if result.Error != "" {
		cmd.Printf("\nNote: %s\n", result.Error)
	}
	return nil
}
