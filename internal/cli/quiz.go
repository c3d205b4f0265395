package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	quizQuery string
	quizCount int
	quizJSON  bool
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Generate a multiple-choice quiz from your study material",
	Long: `Generate multiple-choice questions about a topic, grounded in the
corpus where it has relevant material.

Examples:
  edumate quiz -q "the water cycle"
  edumate quiz -q "photosynthesis" --count 10 --json`,
	RunE: runQuiz,
}

func init() {
	rootCmd.AddCommand(quizCmd)
	quizCmd.Flags().StringVarP(&quizQuery, "query", "q", "", "quiz topic (required)")
	quizCmd.Flags().IntVar(&quizCount, "count", 0, "number of questions (default from config)")
	quizCmd.Flags().BoolVar(&quizJSON, "json", false, "emit JSON output")
	quizCmd.MarkFlagRequired("query")
}

func runQuiz(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	count := quizCount
	if count <= 0 {
		count = cfg.Generation.QuizQuestions
	}

	entries, err := a.tutor.Quiz(cmd.Context(), quizQuery, count)
	if err != nil {
		return err
	}

	if quizJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	labels := []string{"A", "B", "C", "D"}
	for i, entry := range entries {
		fmt.Printf("%d. %s\n", i+1, entry.Question)
		for j, option := range entry.Options {
			fmt.Printf("   %s) %s\n", labels[j], option)
		}
		fmt.Printf("   Answer: %s\n\n", entry.Answer)
	}
	return nil
}
