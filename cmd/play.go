package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizpath/internal/screens/play"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start an interactive practice session",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		profile, err := e.st.Profiles().LoadOrCreate(cmd.Context(), e.cfg.LearnerID, time.Now().UTC())
		if err != nil {
			return err
		}
		return play.Run(e.svc, e.st.Profiles(), e.st.Events(), profile)
	},
}
