package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/lectern/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running Lectern server via HTTP.

These commands require a running server (lectern serve).
Use --server to specify a custom server URL.

Examples:
  lectern api health                        # Check server health
  lectern api books list                    # List imported books
  lectern api paragraphs edit <id> ...      # Edit a paragraph
  lectern api corrections aggregate         # Group corrections by word pair`,
}

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Book management commands",
}

var paragraphsCmd = &cobra.Command{
	Use:   "paragraphs",
	Short: "Paragraph editing commands",
}

var correctionsCmd = &cobra.Command{
	Use:   "corrections",
	Short: "Correction ledger commands",
}

var audioCmd = &cobra.Command{
	Use:   "audio",
	Short: "Audio generation commands",
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Background job commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:4400", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ReadyEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ListProvidersEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ListVoicesEndpoint{}).Command(getServerURL))

	// Books as subcommand group
	booksCmd.AddCommand((&endpoints.CreateBookEndpoint{}).Command(getServerURL))
	booksCmd.AddCommand((&endpoints.ImportBookEndpoint{}).Command(getServerURL))
	booksCmd.AddCommand((&endpoints.ListBooksEndpoint{}).Command(getServerURL))
	booksCmd.AddCommand((&endpoints.GetBookEndpoint{}).Command(getServerURL))
	booksCmd.AddCommand((&endpoints.DeleteBookEndpoint{}).Command(getServerURL))
	booksCmd.AddCommand((&endpoints.ListPagesEndpoint{}).Command(getServerURL))
	booksCmd.AddCommand((&endpoints.GetPageEndpoint{}).Command(getServerURL))

	// Paragraphs as subcommand group
	paragraphsCmd.AddCommand((&endpoints.GetParagraphEndpoint{}).Command(getServerURL))
	paragraphsCmd.AddCommand((&endpoints.EditParagraphEndpoint{}).Command(getServerURL))
	paragraphsCmd.AddCommand((&endpoints.DiffParagraphEndpoint{}).Command(getServerURL))
	paragraphsCmd.AddCommand((&endpoints.RevertParagraphEndpoint{}).Command(getServerURL))

	// Corrections as subcommand group
	correctionsCmd.AddCommand((&endpoints.AggregateCorrectionsEndpoint{}).Command(getServerURL))
	correctionsCmd.AddCommand((&endpoints.KeyCorrectionsEndpoint{}).Command(getServerURL))
	correctionsCmd.AddCommand((&endpoints.CorrectionHistoryEndpoint{}).Command(getServerURL))
	correctionsCmd.AddCommand((&endpoints.DeleteCorrectionsEndpoint{}).Command(getServerURL))
	correctionsCmd.AddCommand((&endpoints.ExportCorrectionsEndpoint{}).Command(getServerURL))
	correctionsCmd.AddCommand((&endpoints.ImportCorrectionsEndpoint{}).Command(getServerURL))

	// Audio as subcommand group
	audioCmd.AddCommand((&endpoints.ParagraphAudioEndpoint{}).Command(getServerURL))
	audioCmd.AddCommand((&endpoints.PageAudioEndpoint{}).Command(getServerURL))

	// Jobs as subcommand group
	jobsCmd.AddCommand((&endpoints.ListJobsEndpoint{}).Command(getServerURL))
	jobsCmd.AddCommand((&endpoints.GetJobEndpoint{}).Command(getServerURL))
	jobsCmd.AddCommand((&endpoints.CancelJobEndpoint{}).Command(getServerURL))

	apiCmd.AddCommand(booksCmd)
	apiCmd.AddCommand(paragraphsCmd)
	apiCmd.AddCommand(correctionsCmd)
	apiCmd.AddCommand(audioCmd)
	apiCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(apiCmd)
}
