// Command arise runs the progression HUD: a self-driving quest and
// leveling tracker fed by a generative content provider.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/solwen/arise/internal/config"
	"github.com/solwen/arise/internal/engine"
	"github.com/solwen/arise/internal/models"
	"github.com/solwen/arise/internal/provider"
	"github.com/solwen/arise/internal/tui"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:           "arise",
		Short:         "Solo progression tracker with generated quests",
		Long:          "arise tracks a player's level, quests and skills, with quest content generated by an external provider and a deterministic offline fallback.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(io.Discard)
			if err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return tui.Run(eng, cfg.MaintenanceEvery)
		},
	}

	rootCmd.AddCommand(newAddCmd(), newSimulateCmd(), newResetCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildEngine wires store, transport, client and engine from the
// environment. Logs go to w.
func buildEngine(w io.Writer) (*engine.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := log.New(w, "arise: ", log.LstdFlags)
	store := models.NewFileStore(cfg.SaveDir, logger)

	var transport provider.Transport
	creds := cfg.APIKeys
	if len(cfg.GeminiKeys) > 0 {
		transport = provider.NewGeminiTransport(cfg.Model)
		creds = cfg.GeminiKeys
	} else {
		transport = provider.NewOpenRouterTransport(cfg.Endpoint, cfg.Model)
	}

	client := provider.New(transport, provider.Options{
		Credentials: creds,
		Policy: provider.RetryPolicy{
			MaxTransient:   cfg.MaxRetries,
			Backoff:        cfg.RetryBackoff,
			AttemptTimeout: cfg.RequestTimeout,
		},
		CacheTTL: cfg.CacheTTL,
		Logger:   logger,
	})

	return engine.New(engine.Options{
		Store:            store,
		Client:           client,
		SkillFloor:       cfg.SkillFloor,
		FailureThreshold: cfg.FailureThreshold,
		Logger:           logger,
	})
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the persisted snapshot (full profile reset)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store := models.NewFileStore(cfg.SaveDir, nil)
			if err := store.Reset(); err != nil {
				return err
			}
			fmt.Println("snapshot removed")
			return nil
		},
	}
}
