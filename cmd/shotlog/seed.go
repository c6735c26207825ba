package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/shotlog/internal/generator"
	"github.com/verte-zerg/shotlog/internal/store"
)

const defaultSeedCount = 30

var (
	seedBean         string
	seedCount        int
	seedStartSetting float64
	seedValue        int64
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a sample shot history",
		Args:  cobra.NoArgs,
		RunE:  runSeedCmd,
	}
	cmd.Flags().StringVar(&seedBean, "bean", "", "bean id or name (default: most recent active bean)")
	cmd.Flags().IntVar(&seedCount, "count", defaultSeedCount, "number of shots")
	cmd.Flags().Float64Var(&seedStartSetting, "start-setting", 8, "grinder setting of the first shot")
	cmd.Flags().Int64Var(&seedValue, "seed", 0, "random seed (0 = time based)")
	addBrewFlags(cmd)
	return cmd
}

func runSeedCmd(cmd *cobra.Command, _ []string) error {
	if seedCount <= 0 {
		return fmt.Errorf("--count must be > 0")
	}
	brew, err := loadBrewConfig(cmd)
	if err != nil {
		return err
	}
	gen := generator.New()
	if seedValue != 0 {
		gen = generator.NewSeeded(seedValue)
	}

	return withStore(func(st *store.Store) error {
		ctx := commandContext(cmd)
		bean, err := resolveBean(ctx, st, seedBean)
		if err != nil {
			return err
		}
		interval := 12 * time.Hour
		shots := gen.Shots(generator.Options{
			BeanID:       bean.ID,
			Count:        seedCount,
			Start:        time.Now().Add(-time.Duration(seedCount) * interval),
			Interval:     interval,
			Dose:         brew.DefaultDose,
			StartSetting: seedStartSetting,
			GrindStep:    brew.GrindStep,
		})
		for _, s := range shots {
			if _, err := st.InsertShot(ctx, s); err != nil {
				return fmt.Errorf("failed to save shot: %w", err)
			}
		}
		log.Debug().Int("count", len(shots)).Str("bean", bean.ID).Msg("seeded shots")
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added %d shots to %s\n", len(shots), bean.Name)
		return err
	})
}
