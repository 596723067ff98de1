package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/solwen/arise/internal/engine"
	"github.com/solwen/arise/internal/ledger"
	"github.com/solwen/arise/internal/models"
	"github.com/solwen/arise/internal/provider"
)

// newSimulateCmd runs a scripted offline session against the fallback
// generator: awaken, a week of maintenance ticks, quest progress and
// completions. Useful for eyeballing engine behavior without keys.
func newSimulateCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a scripted offline session and print the transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			return simulate(days)
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "number of simulated days")
	return cmd
}

func simulate(days int) error {
	dir, err := os.MkdirTemp("", "arise-sim-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	store := models.NewFileStore(dir, nil)
	client := provider.New(provider.NewOpenRouterTransport("", ""), provider.Options{})

	eng, err := engine.New(engine.Options{Store: store, Client: client})
	if err != nil {
		return err
	}
	if err := eng.Awaken("SIMULANT", 27, "TOTAL EVOLUTION"); err != nil {
		return err
	}

	ctx := context.Background()
	now := time.Now()

	for day := 0; day < days; day++ {
		at := now.AddDate(0, 0, day)
		if err := eng.RunMaintenance(ctx, at); err != nil && !errors.Is(err, engine.ErrBusy) {
			return err
		}

		st := eng.Snapshot()
		fmt.Printf("--- day %d (%s) ---\n", day+1, at.Format("2006-01-02"))
		fmt.Printf("level %d (%s), exp %d/%d, gold %d, failed %d\n",
			st.Ledger.Level, ledger.Rank(st.Ledger.Level),
			st.Ledger.Exp, st.Ledger.MaxExp, st.Ledger.Gold, st.Ledger.FailedMissions)

		// Finish every other daily quest; let the rest expire.
		finish := true
		for _, q := range st.Quests {
			if q.Kind != models.QuestDaily || q.Completed {
				continue
			}
			fmt.Printf("  quest: %-34s [%d/%d]\n", q.Title, q.Progress, q.Target)
			if !finish {
				finish = true
				continue
			}
			finish = false
			for p := q.Progress; p < q.Target; p++ {
				if err := eng.AdvanceQuest(q.ID); err != nil {
					return err
				}
			}
			ups, err := eng.CompleteQuest(q.ID)
			if err != nil {
				return err
			}
			fmt.Printf("         completed (+%dg +%dxp)", q.GoldReward, q.ExpReward)
			if ups > 0 {
				fmt.Printf(" LEVEL UP x%d", ups)
			}
			fmt.Println()
		}
		fmt.Printf("  skills in pool: %d\n", len(st.Skills))
	}

	reply, err := eng.Chat(ctx, "Status report.")
	if err != nil {
		return err
	}
	fmt.Println("architect:", reply)
	return nil
}
