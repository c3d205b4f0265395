package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cardsQuery      string
	cardsCount      int
	cardsDifficulty string
	cardsShuffle    bool
	cardsJSON       bool
)

var flashcardsCmd = &cobra.Command{
	Use:   "flashcards",
	Short: "Generate term/definition flashcards",
	Long: `Generate study flashcards about a topic, grounded in the corpus where
it has relevant material.

Examples:
  edumate flashcards -q "photosynthesis"
  edumate flashcards -q "linear algebra" --count 20 --difficulty advanced --shuffle`,
	RunE: runFlashcards,
}

func init() {
	rootCmd.AddCommand(flashcardsCmd)
	flashcardsCmd.Flags().StringVarP(&cardsQuery, "query", "q", "", "flashcard topic (required)")
	flashcardsCmd.Flags().IntVar(&cardsCount, "count", 0, "number of cards (default from config)")
	flashcardsCmd.Flags().StringVar(&cardsDifficulty, "difficulty", "intermediate", "basic, intermediate or advanced")
	flashcardsCmd.Flags().BoolVar(&cardsShuffle, "shuffle", false, "shuffle card order")
	flashcardsCmd.Flags().BoolVar(&cardsJSON, "json", false, "emit JSON output")
	flashcardsCmd.MarkFlagRequired("query")
}

func runFlashcards(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	count := cardsCount
	if count <= 0 {
		count = cfg.Generation.Flashcards
	}

	cards, err := a.tutor.Flashcards(cmd.Context(), cardsQuery, count, cardsDifficulty, cardsShuffle)
	if err != nil {
		return err
	}

	if cardsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cards)
	}

	for i, card := range cards {
		fmt.Printf("Card %d\n", i+1)
		fmt.Printf("  Term:       %s\n", card.Term)
		fmt.Printf("  Definition: %s\n\n", card.Definition)
	}
	return nil
}
