package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	askQuery string
	askJSON  bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a question grounded in your study material",
	Long: `Answer a question using retrieved passages from the corpus. When no
relevant material is found the answer says so and falls back to general
knowledge.

Examples:
  edumate ask -q "what drives the water cycle?"
  edumate ask -q "define osmosis" --json`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuery, "query", "q", "", "question to answer (required)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "emit JSON output")
	askCmd.MarkFlagRequired("query")
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), GetConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	answer, err := a.tutor.Answer(cmd.Context(), askQuery, nil)
	if err != nil {
		return err
	}

	if askJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]string{
			"query":  askQuery,
			"answer": answer,
		})
	}

	fmt.Println(answer)
	return nil
}
