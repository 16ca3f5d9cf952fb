package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		concept, _ := cmd.Flags().GetString("concept")
		limit, _ := cmd.Flags().GetInt("limit")
		full, _ := cmd.Flags().GetBool("full")

		if full {
			// Full analytic log from the event store, not the bounded
			// profile history.
			events, err := e.st.Events().RecentByLearner(cmd.Context(), e.cfg.LearnerID, limit)
			if err != nil {
				return err
			}
			for _, ev := range events {
				fmt.Printf("%s  %s  correct=%t  difficulty=%d  [%s]\n",
					ev.CreatedAt.Format(time.RFC3339), ev.QuizID, ev.Correct,
					ev.Difficulty, strings.Join(ev.Concepts, ", "))
			}
			return nil
		}

		profile, err := e.st.Profiles().LoadOrCreate(cmd.Context(), e.cfg.LearnerID, time.Now().UTC())
		if err != nil {
			return err
		}
		for _, a := range e.svc.RecentAttempts(profile, concept, limit) {
			fmt.Printf("%s  %s  correct=%t  difficulty=%d  [%s]\n",
				a.At.Format(time.RFC3339), a.QuizID, a.Correct,
				a.Difficulty, strings.Join(a.Concepts, ", "))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().String("concept", "", "Only attempts linked to this concept (ignored with --full)")
	historyCmd.Flags().Int("limit", 10, "Maximum attempts to show")
	historyCmd.Flags().Bool("full", false, "Read the unbounded event log instead of the profile history")
}
