package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"trackseed/internal/config"
)

func newSeedCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Run the seed plan once and exit",
		Args:  cobra.NoArgs,
		RunE:  c.runSeed,
	}
	cmd.Flags().IntVar(&c.count, "count", 0, "Override the record count of every plan step")
	return cmd
}

func (c *cli) runSeed(cmd *cobra.Command, args []string) error {
	if c.count < 0 {
		err := fmt.Errorf("--count must be positive, got %d", c.count)
		c.log.Error("invalid flags", slog.String("error", err.Error()))
		return err
	}
	plan, err := config.LoadPlan(c.cfg.Seed.PlanPath)
	if err != nil {
		c.log.Error("failed to load plan", slog.String("error", err.Error()))
		return err
	}
	if c.count > 0 {
		for i := range plan.Seeds {
			plan.Seeds[i].Count = c.count
		}
	}

	a, err := c.open(cmd)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Close(ctx); err != nil {
			c.log.Warn("close store", slog.String("error", err.Error()))
		}
	}()

	results, err := a.Seed(cmd.Context(), plan)
	if err != nil {
		c.log.Error("seed failed", slog.String("error", err.Error()))
		return err
	}
	for _, r := range results {
		c.log.Info("seed completed", slog.String("entity", r.Entity), slog.Int("inserted", len(r.IDs)))
	}
	return nil
}
