package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"stockgenius/internal/repository"
	"stockgenius/internal/service"
	"syscall"

	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert stock metadata from a YAML or JSON file, keeping existing records",
	RunE: func(cmd *cobra.Command, args []string) error {
		stocks, err := service.LoadStockSeed(seedFile)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		appDep, err := NewAppDependency(ctx)
		if err != nil {
			return err
		}
		defer func() {
			_ = appDep.Close(context.Background())
		}()

		seeder := service.NewStockSeedService(appDep.log, repository.NewStockRepository(appDep.db.DB))
		summary, err := seeder.Seed(ctx, stocks)
		if err != nil {
			return err
		}

		fmt.Printf("Seeded %d/%d stocks (already stored=%d)\n", summary.Inserted, summary.Total, summary.Existing)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "seed/stocks.yaml", "stock list to load (.yaml or .json)")
}
