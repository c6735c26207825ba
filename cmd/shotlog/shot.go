package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/shotlog/internal/advice"
	"github.com/verte-zerg/shotlog/internal/grind"
	"github.com/verte-zerg/shotlog/internal/model"
	"github.com/verte-zerg/shotlog/internal/store"
)

const recentHistory = 10

var (
	shotBean     string
	shotDose     float64
	shotYield    float64
	shotTime     int
	shotGrind    string
	shotNotes    string
	shotTaste    string
	shotStrength string

	shotListBean string
	shotListLast int
)

func newShotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shot",
		Short: "Record and list shots",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record a shot and get a grind recommendation",
		Args:  cobra.NoArgs,
		RunE:  runShotAddCmd,
	}
	addCmd.Flags().StringVar(&shotBean, "bean", "", "bean id or name (default: most recent active bean)")
	addCmd.Flags().Float64Var(&shotDose, "dose", 0, "dose in grams (default from config)")
	addCmd.Flags().Float64Var(&shotYield, "yield", 0, "yield in grams")
	addCmd.Flags().IntVar(&shotTime, "time", 0, "extraction time in seconds")
	addCmd.Flags().StringVar(&shotGrind, "grind", "", "grinder setting (default: bean's last setting)")
	addCmd.Flags().StringVar(&shotNotes, "notes", "", "tasting notes")
	addCmd.Flags().StringVar(&shotTaste, "taste", "", "sour, perfect or bitter")
	addCmd.Flags().StringVar(&shotStrength, "strength", "", "weak or strong")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List shots",
		Args:  cobra.NoArgs,
		RunE:  runShotListCmd,
	}
	listCmd.Flags().StringVar(&shotListBean, "bean", "", "bean id or name")
	listCmd.Flags().IntVar(&shotListLast, "last", 0, "limit to last N shots")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a shot",
		Args:  cobra.ExactArgs(1),
		RunE:  runShotDeleteCmd,
	}

	cmd.AddCommand(addCmd, listCmd, deleteCmd)
	return cmd
}

func runShotAddCmd(cmd *cobra.Command, _ []string) error {
	brew, err := loadBrewConfig(cmd)
	if err != nil {
		return err
	}
	taste, err := model.ParseTastePrimary(shotTaste)
	if err != nil {
		return err
	}
	strength, err := model.ParseTasteSecondary(shotStrength)
	if err != nil {
		return err
	}
	if strength != model.StrengthNone && taste == model.TasteNone {
		return fmt.Errorf("--strength needs --taste")
	}
	if shotYield <= 0 {
		return fmt.Errorf("--yield must be > 0")
	}
	if shotTime <= 0 {
		return fmt.Errorf("--time must be > 0")
	}
	dose := shotDose
	if dose <= 0 {
		dose = brew.DefaultDose
	}

	return withStore(func(st *store.Store) error {
		ctx := commandContext(cmd)
		bean, err := resolveBean(ctx, st, shotBean)
		if err != nil {
			return err
		}
		setting := shotGrind
		if setting == "" {
			if bean.LastGrinderSetting == nil {
				return fmt.Errorf("--grind is required for the first shot of %s", bean.Name)
			}
			setting = *bean.LastGrinderSetting
		}

		stored, err := st.InsertShot(ctx, model.Shot{
			BeanID:                bean.ID,
			CoffeeWeightIn:        dose,
			CoffeeWeightOut:       shotYield,
			ExtractionTimeSeconds: shotTime,
			GrinderSetting:        setting,
			Notes:                 shotNotes,
		})
		if err != nil {
			return fmt.Errorf("failed to save shot: %w", err)
		}
		log.Debug().Str("shot", stored.ID).Str("bean", bean.ID).Msg("shot saved")

		history, err := st.ListShots(ctx, model.ShotFilter{BeanID: bean.ID, Last: recentHistory})
		if err != nil {
			return fmt.Errorf("failed to list shots: %w", err)
		}

		out := cmd.OutOrStdout()
		if _, err := fmt.Fprintf(out, "Saved %s: %.1fg -> %.1fg (1:%.2f) in %ds at %s\n",
			stored.ID, stored.CoffeeWeightIn, stored.CoffeeWeightOut, stored.BrewRatio(),
			stored.ExtractionTimeSeconds, stored.GrinderSetting); err != nil {
			return err
		}
		rec, ok := grind.New(brew).ForShot(stored, taste, strength)
		if err := writeRecommendation(out, rec, ok); err != nil {
			return err
		}
		return writeAdvice(out, advice.ForHistory(history))
	})
}

func writeRecommendation(w io.Writer, rec grind.Recommendation, ok bool) error {
	if !ok {
		_, err := fmt.Fprintln(w, "Grind: keep the current setting")
		return err
	}
	unit := "steps"
	if rec.Steps == 1 {
		unit = "step"
	}
	_, err := fmt.Fprintf(w, "Grind %s: %s -> %s (%d %s, %s confidence)\n  %s\n",
		rec.Direction, rec.CurrentGrindSetting, rec.SuggestedGrindSetting,
		rec.Steps, unit, rec.Confidence, rec.Explanation)
	return err
}

func writeAdvice(w io.Writer, recs []advice.ShotRecommendation) error {
	for _, r := range recs {
		if _, err := fmt.Fprintf(w, "[%s] %s\n", r.Priority, r.Message()); err != nil {
			return err
		}
	}
	return nil
}

func runShotListCmd(cmd *cobra.Command, _ []string) error {
	if shotListLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	return withStore(func(st *store.Store) error {
		ctx := commandContext(cmd)
		filter := model.ShotFilter{Last: shotListLast}
		if shotListBean != "" {
			bean, err := resolveBean(ctx, st, shotListBean)
			if err != nil {
				return err
			}
			filter.BeanID = bean.ID
		}
		shots, err := st.ListShots(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list shots: %w", err)
		}
		return writeShots(cmd.OutOrStdout(), shots)
	})
}

func writeShots(w io.Writer, shots []model.Shot) error {
	if len(shots) == 0 {
		_, err := fmt.Fprintln(w, "No shots found.")
		return err
	}
	for _, s := range shots {
		marker := " "
		if s.IsOptimalExtractionTime() {
			marker = "*"
		}
		if _, err := fmt.Fprintf(w, "%s %s  %5.1fg -> %5.1fg  1:%.2f  %3ds%s  grind %s  %s\n",
			s.ID, s.Timestamp.Local().Format("2006-01-02 15:04"), s.CoffeeWeightIn, s.CoffeeWeightOut,
			s.BrewRatio(), s.ExtractionTimeSeconds, marker, s.GrinderSetting, s.Notes); err != nil {
			return err
		}
	}
	return nil
}

func runShotDeleteCmd(cmd *cobra.Command, args []string) error {
	return withStore(func(st *store.Store) error {
		err := st.DeleteShot(commandContext(cmd), args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("shot %q not found", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to delete shot: %w", err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return err
	})
}
