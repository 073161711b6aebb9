package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/booklink/internal/linkcmd"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "booklink",
		Short: "Book record linkage between catalog exports",
		Long: `Booklink links the records of two book catalog exports (for example OpenLibrary
and Google Books) that describe the same book.

Records are compared on normalized titles and authors, ISBN-10/ISBN-13
equivalence and publication year. Matched pairs are written as a joined table,
and runs can be summarized and recorded for later comparison.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(linkcmd.NewMatchCmd())
	cmd.AddCommand(linkcmd.NewAnalyzeCmd())
	cmd.AddCommand(linkcmd.NewISBNCmd())
	cmd.AddCommand(linkcmd.NewHistoryCmd())
	cmd.AddCommand(linkcmd.NewInspectCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}
