package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"edumate/internal/usecase"
)

var (
	planGoal     string
	planDuration string
	planDaily    string
	planLevel    string
	planStyle    string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate a day-by-day study plan",
	Long: `Build a structured study plan for a learning goal, using the corpus
as the primary topic source where it has relevant material.

Examples:
  edumate plan -q "pass the databases exam" --duration "2 weeks" --daily "1 hour"
  edumate plan -q "learn statistics" --level beginner --style hands-on`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringVarP(&planGoal, "query", "q", "", "learning goal (required)")
	planCmd.Flags().StringVar(&planDuration, "duration", "2 weeks", "total study duration")
	planCmd.Flags().StringVar(&planDaily, "daily", "1 hour", "daily available time")
	planCmd.Flags().StringVar(&planLevel, "level", "beginner", "current level")
	planCmd.Flags().StringVar(&planStyle, "style", "mixed", "learning style: theory-focused, hands-on or mixed")
	planCmd.MarkFlagRequired("query")
}

func runPlan(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), GetConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	plan, err := a.tutor.Plan(cmd.Context(), usecase.PlanRequest{
		Goal:      planGoal,
		Duration:  planDuration,
		DailyTime: planDaily,
		Level:     planLevel,
		Style:     planStyle,
	})
	if err != nil {
		return err
	}

	fmt.Println(plan)
	return nil
}
