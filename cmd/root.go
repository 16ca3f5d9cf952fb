package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/quizpath/internal/adaptive"
	"github.com/abhisek/quizpath/internal/config"
	"github.com/abhisek/quizpath/internal/knowledge"
	"github.com/abhisek/quizpath/internal/logging"
	"github.com/abhisek/quizpath/internal/quiz"
	"github.com/abhisek/quizpath/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quizpath",
	Short: "Adaptive quiz selection over a knowledge graph",
	Long: "Quizpath picks the next best quiz for a learner from a bank of items\n" +
		"linked to a prerequisite graph, and keeps mastery scores and a spaced\n" +
		"review schedule up to date as answers come in.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZPATH_DB)")
	rootCmd.PersistentFlags().String("graph", "", "Path to concept graph JSON (overrides QUIZPATH_GRAPH)")
	rootCmd.PersistentFlags().String("bank", "", "Path to quiz bank JSON (overrides QUIZPATH_BANK)")
	rootCmd.PersistentFlags().String("learner", "", "Learner ID (overrides QUIZPATH_LEARNER)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// env bundles what a command needs, as built by loadEnv.
type env struct {
	cfg   *config.Config
	log   *zap.Logger
	graph *knowledge.Graph
	bank  *quiz.Bank
	svc   *adaptive.Service
	st    *store.Store
}

// loadEnv builds everything a command needs: config, logger, graph,
// bank, facade service, and the store.
func loadEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := cmd.Flags().GetString("graph"); v != "" {
		cfg.GraphPath = v
	}
	if v, _ := cmd.Flags().GetString("bank"); v != "" {
		cfg.BankPath = v
	}
	if v, _ := cmd.Flags().GetString("learner"); v != "" {
		cfg.LearnerID = v
	}

	log, err := logging.New(cfg.LogMode)
	if err != nil {
		return nil, err
	}

	graph, err := knowledge.LoadGraph(cfg.GraphPath)
	if err != nil {
		return nil, err
	}
	bank, err := quiz.LoadBank(cfg.BankPath)
	if err != nil {
		return nil, err
	}

	svc, err := adaptive.New(graph, bank, cfg.Policy, adaptive.WithLogger(log))
	if err != nil {
		return nil, err
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	} else if err := store.EnsureDir(dbPath); err != nil {
		return nil, err
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &env{cfg: cfg, log: log, graph: graph, bank: bank, svc: svc, st: st}, nil
}

func (e *env) close() {
	_ = e.log.Sync()
	_ = e.st.Close()
}
