package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quarry-labs/askdoc/internal/core/domain"
	"github.com/quarry-labs/askdoc/internal/core/ports/driven"
	"github.com/quarry-labs/askdoc/internal/logger"
)

// chunkSizeChars is the target chunk length for ingested text files.
// Paragraphs are packed until the next one would cross this limit.
const chunkSizeChars = 1200

var documentAddTitle string

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage the document corpus",
	Long:  `List, inspect, add, or delete documents in the corpus.`,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document details",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsShow,
}

var documentsTextCmd = &cobra.Command{
	Use:   "text [doc-id]",
	Short: "Print a document's assembled text",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsText,
}

var documentsAddCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Ingest a plain-text file",
	Long: `Reads a plain-text file, splits it into chunks, embeds them when an
embedding provider is configured, and stores the document as Ready.
Without an embedding provider the document is still searchable by keyword.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentsAdd,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

func init() {
	documentsAddCmd.Flags().StringVarP(&documentAddTitle, "title", "t", "", "document title (defaults to the file name)")

	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsShowCmd)
	documentsCmd.AddCommand(documentsTextCmd)
	documentsCmd.AddCommand(documentsAddCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
	rootCmd.AddCommand(documentsCmd)
}

func ensureDocumentStore() error {
	if documentStore != nil {
		return nil
	}
	return initServices()
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if err := ensureDocumentStore(); err != nil {
		return err
	}

	docs, err := documentStore.ListDocuments(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents. Add one with 'askdoc documents add <file>'.")
		return nil
	}

	statusColor := map[domain.DocumentStatus]func(format string, a ...interface{}) string{
		domain.StatusReady:      color.GreenString,
		domain.StatusProcessing: color.YellowString,
		domain.StatusUploaded:   color.YellowString,
		domain.StatusFailed:     color.RedString,
	}

	for i := range docs {
		doc := &docs[i]
		paint := statusColor[doc.Status]
		if paint == nil {
			paint = fmt.Sprintf
		}
		cmd.Printf("  %s  %-12s %s\n", doc.ID, paint("%s", doc.Status), doc.Title)
	}
	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDocumentsShow(cmd *cobra.Command, args []string) error {
	if err := ensureDocumentStore(); err != nil {
		return err
	}

	doc, err := documentStore.GetDocument(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("getting document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Title:    %s\n", doc.Title)
	cmd.Printf("  Status:   %s\n", doc.Status)
	if doc.PageCount > 0 {
		cmd.Printf("  Pages:    %d\n", doc.PageCount)
	}
	cmd.Printf("  Created:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:  %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))

	if doc.IsReady() {
		chunks, err := documentStore.ReadyChunksForDocument(cmd.Context(), doc.ID)
		if err == nil {
			cmd.Printf("  Chunks:   %d\n", len(chunks))
		}
	}
	return nil
}

func runDocumentsText(cmd *cobra.Command, args []string) error {
	if err := ensureDocumentStore(); err != nil {
		return err
	}

	text, err := documentStore.DocumentText(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("getting document text: %w", err)
	}

	cmd.Println(text)
	return nil
}

func runDocumentsAdd(cmd *cobra.Command, args []string) error {
	if err := ensureDocumentStore(); err != nil {
		return err
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return errors.New("file is empty")
	}

	title := documentAddTitle
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	ctx := cmd.Context()
	doc := &domain.Document{Title: title, Status: domain.StatusUploaded}
	if err := documentStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	if err := documentStore.SetDocumentStatus(ctx, doc.ID, domain.StatusProcessing); err != nil {
		return fmt.Errorf("marking document processing: %w", err)
	}

	if err := ingestText(ctx, documentStore, embeddingService, doc.ID, text); err != nil {
		if statusErr := documentStore.SetDocumentStatus(ctx, doc.ID, domain.StatusFailed); statusErr != nil {
			logger.Warn("Failed to mark document failed: %v", statusErr)
		}
		return fmt.Errorf("ingesting document: %w", err)
	}

	if err := documentStore.SetDocumentStatus(ctx, doc.ID, domain.StatusReady); err != nil {
		return fmt.Errorf("marking document ready: %w", err)
	}

	cmd.Printf("Added document %s (%s)\n", doc.ID, title)
	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	if err := ensureDocumentStore(); err != nil {
		return err
	}

	docID := args[0]
	if _, err := documentStore.GetDocument(cmd.Context(), docID); err != nil {
		return fmt.Errorf("getting document: %w", err)
	}
	if err := documentStore.DeleteDocument(cmd.Context(), docID); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	cmd.Printf("Deleted document %s\n", docID)
	return nil
}

// ingestText splits text into chunks, embeds them when an embedder is
// available, and stores them for the document.
func ingestText(ctx context.Context, store driven.DocumentStore, embedder driven.EmbeddingService, docID, text string) error {
	parts := splitText(text, chunkSizeChars)

	var embeddings [][]float32
	dim := 0
	if embedder != nil {
		var err error
		embeddings, err = embedder.EmbedBatch(ctx, parts)
		if err != nil {
			return fmt.Errorf("embedding chunks: %w", err)
		}
		dim = embedder.Dimensions()
	}

	chunks := make([]domain.Chunk, len(parts))
	for i, part := range parts {
		var embedding []float32
		if i < len(embeddings) {
			embedding = embeddings[i]
		}
		chunk, err := domain.NewChunk("", docID, i, part, embedding, dim)
		if err != nil {
			return fmt.Errorf("chunk %d: %w", i, err)
		}
		chunks[i] = chunk
	}

	return store.SaveChunks(ctx, chunks)
}

// splitText packs paragraphs into chunks of at most maxChars characters.
// A single paragraph longer than maxChars becomes its own chunk.
func splitText(text string, maxChars int) []string {
	paragraphs := strings.Split(text, "\n\n")

	var chunks []string
	var current strings.Builder
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if current.Len() > 0 && current.Len()+len(p)+2 > maxChars {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}
