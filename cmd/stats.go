package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		now := time.Now().UTC()
		profile, err := e.st.Profiles().LoadOrCreate(cmd.Context(), e.cfg.LearnerID, now)
		if err != nil {
			return err
		}

		prog := e.svc.LearningProgress(profile, now)

		fmt.Printf("Learner: %s\n", profile.LearnerID)
		fmt.Printf("Attempts: %d  Accuracy: %.1f%%  Coverage: %.1f%%\n",
			prog.TotalAttempts, prog.Accuracy*100, prog.CoveragePct)
		fmt.Printf("Mastered (%d): %s\n", len(prog.Mastered), strings.Join(prog.Mastered, ", "))
		fmt.Printf("In progress (%d): %s\n", len(prog.InProgress), strings.Join(prog.InProgress, ", "))
		fmt.Printf("Weak (%d): %s\n", len(prog.Weak), strings.Join(prog.Weak, ", "))
		fmt.Printf("Reviews due: %d\n", prog.DueReviews)

		if len(prog.DueByBand) > 0 {
			bands := make([]string, 0, len(prog.DueByBand))
			for b := range prog.DueByBand {
				bands = append(bands, b)
			}
			sort.Strings(bands)
			for _, b := range bands {
				fmt.Printf("  band %s: %d\n", b, prog.DueByBand[b])
			}
		}
		return nil
	},
}
