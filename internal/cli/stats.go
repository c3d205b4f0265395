package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics",
	Long: `Summarise the corpus: documents, chunks, indexed vectors, and a
per-source breakdown.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), GetConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.store.GetStats()
	if err != nil {
		return err
	}

	fmt.Printf("Documents: %d\n", stats.TotalDocs)
	fmt.Printf("Chunks:    %d\n", stats.TotalChunks)
	fmt.Printf("Vectors:   %d (indexed: %d)\n", stats.TotalVectors, a.index.Len())
	fmt.Printf("Embedding: %s (%d dimensions)\n", a.embedder.ModelName(), a.embedder.Dimension())

	if len(stats.ChunksBySrc) > 0 {
		fmt.Println("\nChunks by source:")
		sources := make([]string, 0, len(stats.ChunksBySrc))
		for src := range stats.ChunksBySrc {
			sources = append(sources, src)
		}
		sort.Strings(sources)
		for _, src := range sources {
			fmt.Printf("  %6d  %s\n", stats.ChunksBySrc[src], src)
		}
	}
	return nil
}
