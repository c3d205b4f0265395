// Package cli implements the edumate command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"edumate/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "edumate",
	Short: "EduMate - retrieval-augmented study assistant",
	Long: `EduMate ingests study material (text, markdown, PDF, docx), indexes it
for semantic lookup, and runs tutoring tasks grounded in that material:
answering questions, generating quizzes and flashcards, summarising
topics, and building study plans.

Example usage:
  edumate ingest ./notes               # Ingest study material
  edumate ask -q "what is osmosis?"    # Grounded question answering
  edumate quiz -q "the water cycle"    # Multiple-choice quiz
  edumate flashcards -q "photosynthesis" --count 10`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		setupLogging(cfg.Logging.Level)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./edumate.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "working directory (default is current directory)")
}

func setupLogging(level string) {
	parsed := log.ParseLevel(level)
	if level == "" {
		parsed = log.WarnLevel
	}
	log.DefaultLogger = log.Logger{
		Level:  parsed,
		Writer: &log.ConsoleWriter{ColorOutput: true},
	}
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
