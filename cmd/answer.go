package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var answerCmd = &cobra.Command{
	Use:   "answer <quiz-id>",
	Short: "Record the outcome of an answered quiz",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		q, ok := e.bank.Get(args[0])
		if !ok {
			return fmt.Errorf("quiz %q not in bank", args[0])
		}
		correct, _ := cmd.Flags().GetBool("correct")

		ctx := cmd.Context()
		now := time.Now().UTC()
		profile, err := e.st.Profiles().LoadOrCreate(ctx, e.cfg.LearnerID, now)
		if err != nil {
			return err
		}

		next, err := e.svc.UpdateScores(profile, q, correct, now)
		if err != nil {
			return err
		}
		if err := e.st.Profiles().Save(ctx, next); err != nil {
			return err
		}
		if len(next.History) > 0 {
			last := next.History[len(next.History)-1]
			if err := e.st.Events().Append(ctx, next.LearnerID, last); err != nil {
				return err
			}
		}

		for _, c := range q.LinkedConcepts {
			fmt.Printf("%s: %.2f\n", c, next.Score(c))
		}
		return nil
	},
}

func init() {
	answerCmd.Flags().Bool("correct", false, "The answer was correct")
}
