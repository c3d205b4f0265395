package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Ingest study material into the corpus",
	Long: `Ingest files or directories into the study corpus. Directories are
expanded through the configured include/exclude globs. Supported formats:
plain text, markdown, PDF, docx.

Unchanged files (same content hash) are skipped without re-embedding.

Examples:
  edumate ingest ./notes
  edumate ingest lecture.pdf chapter3.docx`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), GetConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	var bar *progressbar.ProgressBar
	a.ingest.Progress = func(done, total int) {
		if bar == nil {
			bar = progressbar.Default(int64(total), "ingesting")
		}
		bar.Set(done)
	}

	result, err := a.ingest.IngestPaths(cmd.Context(), args)
	if err != nil {
		return err
	}

	fmt.Printf("\nIngested: %d documents (%d chunks)\n", result.Ingested, result.ChunksCreated)
	if result.Skipped > 0 {
		fmt.Printf("Skipped:  %d unchanged\n", result.Skipped)
	}
	for _, e := range result.Errors {
		fmt.Printf("Error:    %s\n", e)
	}
	return nil
}
