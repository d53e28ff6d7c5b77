package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aishitdharwal/ai-agent/app"
	"github.com/aishitdharwal/ai-agent/store"
)

var openStore = app.OpenStore

// withStore opens the configured store for fn and closes it afterwards.
func withStore(ctx context.Context, fn func(store.Store) error) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close(st)
	return fn(st)
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect saved research state",
}

var stateGetCmd = &cobra.Command{
	Use:   "get <request_id>",
	Short: "Print the saved record for a request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(st store.Store) error {
			rec, err := st.Load(cmd.Context(), args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no state saved for %s", args[0])
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rec)
		})
	},
}

var stateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List request ids with saved state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(st store.Store) error {
			ids, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		})
	},
}

func init() {
	stateCmd.AddCommand(stateGetCmd, stateListCmd)
	rootCmd.AddCommand(stateCmd)
}
