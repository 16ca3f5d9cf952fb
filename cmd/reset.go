package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset [concept-id...]",
	Short: "Reset learner progress, fully or for specific concepts",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		ctx := cmd.Context()
		now := time.Now().UTC()
		profile, err := e.st.Profiles().LoadOrCreate(ctx, e.cfg.LearnerID, now)
		if err != nil {
			return err
		}

		var ids []string
		if len(args) > 0 {
			ids = args
		}
		next := e.svc.ResetProgress(profile, ids)
		if err := e.st.Profiles().Save(ctx, next); err != nil {
			return err
		}

		if ids == nil {
			fmt.Printf("Reset all progress for %s\n", next.LearnerID)
		} else {
			fmt.Printf("Reset %d concept(s) for %s\n", len(ids), next.LearnerID)
		}
		return nil
	},
}
