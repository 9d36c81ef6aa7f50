package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ukydev/autocare/internal/health"
)

// NewScoreCommand creates the score command.
func NewScoreCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "score <snapshot.json>",
		Short: "Score a diagnostic snapshot",
		Long: `Score a diagnostic snapshot from 0 to 100 and list the deductions.

Use "-" to read the snapshot from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := readSnapshot(cmd, args[0])
			if err != nil {
				return err
			}
			score := health.Evaluate(snap)
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), score)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Score: %d/%d\n", score.Score, health.MaxScore)
			if len(score.Deductions) == 0 {
				fmt.Fprintln(out, "Deductions: none")
				return nil
			}
			fmt.Fprintln(out, "Deductions:")
			for _, d := range score.Deductions {
				fmt.Fprintf(out, "  %6.1f  %s\n", -d.Points, d.Reason)
			}
			return nil
		},
	}
}

// NewRecommendCommand creates the recommend command.
func NewRecommendCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend <snapshot.json>",
		Short: "List services a diagnostic snapshot calls for",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := readSnapshot(cmd, args[0])
			if err != nil {
				return err
			}
			recs := health.Recommend(snap)
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), recs)
			}

			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(out, "No recommendations")
				return nil
			}
			for _, r := range recs {
				fmt.Fprintf(out, "[%s] %s (%s)\n    %s\n", r.Urgency, r.Title, r.Type, r.Description)
			}
			return nil
		},
	}
}
