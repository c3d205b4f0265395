package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var summarizeQuery string

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarise a topic from your study material",
	Long: `Produce concise revision notes for a topic from retrieved passages.

Example:
  edumate summarize -q "chapter 3: cell division"`,
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().StringVarP(&summarizeQuery, "query", "q", "", "topic to summarise (required)")
	summarizeCmd.MarkFlagRequired("query")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), GetConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.tutor.Summarize(cmd.Context(), summarizeQuery)
	if err != nil {
		return err
	}

	fmt.Println(summary)
	return nil
}
