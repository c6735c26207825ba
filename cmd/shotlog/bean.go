package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/shotlog/internal/model"
	"github.com/verte-zerg/shotlog/internal/store"
)

const dateLayout = "2006-01-02"

var (
	beanRoast   string
	beanListAll bool
)

func newBeanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bean",
		Short: "Manage beans",
	}

	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a bean",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBeanAddCmd,
	}
	addCmd.Flags().StringVar(&beanRoast, "roast", "", "roast date (YYYY-MM-DD)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List beans",
		Args:  cobra.NoArgs,
		RunE:  runBeanListCmd,
	}
	listCmd.Flags().BoolVar(&beanListAll, "all", false, "include archived beans")

	archiveCmd := &cobra.Command{
		Use:   "archive <id|name>",
		Short: "Archive a bean",
		Args:  cobra.ExactArgs(1),
		RunE:  runBeanArchiveCmd,
	}

	setGrindCmd := &cobra.Command{
		Use:   "set-grind <id|name> <setting>",
		Short: "Set the grinder setting the next shot starts from",
		Args:  cobra.ExactArgs(2),
		RunE:  runBeanSetGrindCmd,
	}

	cmd.AddCommand(addCmd, listCmd, archiveCmd, setGrindCmd)
	return cmd
}

func runBeanAddCmd(cmd *cobra.Command, args []string) error {
	var roast *time.Time
	if beanRoast != "" {
		parsed, err := time.ParseInLocation(dateLayout, beanRoast, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --roast value: %w", err)
		}
		roast = &parsed
	}
	name := strings.Join(args, " ")
	return withStore(func(st *store.Store) error {
		bean, err := st.CreateBean(commandContext(cmd), name, roast)
		if err != nil {
			return fmt.Errorf("failed to add bean: %w", err)
		}
		log.Debug().Str("bean", bean.ID).Msg("bean added")
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", bean.Name, bean.ID)
		return err
	})
}

func runBeanListCmd(cmd *cobra.Command, _ []string) error {
	return withStore(func(st *store.Store) error {
		beans, err := st.ListBeans(commandContext(cmd), beanListAll)
		if err != nil {
			return fmt.Errorf("failed to list beans: %w", err)
		}
		return writeBeans(cmd.OutOrStdout(), beans)
	})
}

func writeBeans(w io.Writer, beans []model.Bean) error {
	if len(beans) == 0 {
		_, err := fmt.Fprintln(w, "No beans yet. Add one with: shotlog bean add <name>")
		return err
	}
	for _, b := range beans {
		roast := "-"
		if b.RoastDate != nil {
			roast = b.RoastDate.Local().Format(dateLayout)
		}
		grind := "-"
		if b.LastGrinderSetting != nil {
			grind = *b.LastGrinderSetting
		}
		status := ""
		if !b.IsActive {
			status = "  (archived)"
		}
		if _, err := fmt.Fprintf(w, "%s  %s  roast %s  grind %s%s\n", b.ID, b.Name, roast, grind, status); err != nil {
			return err
		}
	}
	return nil
}

func runBeanArchiveCmd(cmd *cobra.Command, args []string) error {
	return withStore(func(st *store.Store) error {
		ctx := commandContext(cmd)
		bean, err := st.FindBean(ctx, args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("bean %q not found", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to load bean: %w", err)
		}
		if err := st.DeactivateBean(ctx, bean.ID); err != nil {
			return fmt.Errorf("failed to archive bean: %w", err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Archived %s\n", bean.Name)
		return err
	})
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runBeanSetGrindCmd(cmd *cobra.Command, args []string) error {
	setting := strings.TrimSpace(args[1])
	if setting == "" {
		return fmt.Errorf("grinder setting must not be empty")
	}
	return withStore(func(st *store.Store) error {
		ctx := commandContext(cmd)
		bean, err := resolveBean(ctx, st, args[0])
		if err != nil {
			return err
		}
		if err := st.UpdateBeanGrinderSetting(ctx, bean.ID, setting); err != nil {
			return fmt.Errorf("failed to update bean: %w", err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s grind set to %s\n", bean.Name, setting)
		return err
	})
}
