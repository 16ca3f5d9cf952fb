package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Print the next suggested quiz",
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

		q, err := e.svc.SuggestNextQuiz(profile, time.Now().UTC())
		if err != nil {
			return err
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			out, err := json.MarshalIndent(q, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Printf("%s  (difficulty %d, %s)\n", q.ID, q.Difficulty, q.Style)
		fmt.Println(q.Prompt)
		for i, c := range q.Choices {
			fmt.Printf("  %d) %s\n", i+1, c.Text)
		}
		return nil
	},
}

func init() {
	suggestCmd.Flags().Bool("json", false, "Print the quiz as JSON")
}
