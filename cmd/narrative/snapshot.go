package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/store/sqlite"
)

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save or inspect the persisted world snapshot",
	}
	cmd.AddCommand(snapshotSaveCmd())
	cmd.AddCommand(snapshotListCmd())
	return cmd
}

func snapshotSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Write the loaded world into the snapshot tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			eng, client, err := openJournalClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close(ctx)

			if err := client.SaveSnapshot(ctx, eng.store); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Saved %d entities.\n", eng.store.Len())
			return nil
		},
	}
}

func snapshotListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List entities in the persisted snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			_, client, err := openJournalClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close(ctx)

			store, err := client.LoadSnapshot(ctx)
			if err != nil {
				return err
			}
			if store.Len() == 0 {
				fmt.Fprintln(os.Stdout, "Snapshot is empty.")
				return nil
			}
			for _, id := range store.IDs() {
				line := string(id)
				if e, ok := store.Get(id); ok {
					if name, ok := e.DisplayName(); ok {
						line = fmt.Sprintf("%s  %s", id, name)
					}
				}
				fmt.Fprintln(os.Stdout, line)
			}
			return nil
		},
	}
}

func openJournalClient(ctx context.Context) (*engine, *sqlite.Client, error) {
	eng, err := loadEngine(false)
	if err != nil {
		return nil, nil, err
	}
	if eng.cfg.Journal.DSN == "" {
		return nil, nil, fmt.Errorf("no journal configured")
	}

	client, err := sqlite.Open(ctx, eng.cfg.Journal.DSN, eng.log)
	if err != nil {
		return nil, nil, err
	}
	if err := client.EnsureSchema(ctx); err != nil {
		client.Close(ctx)
		return nil, nil, err
	}
	return eng, client, nil
}
