package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

func journalCmd() *cobra.Command {
	var limit int
	var byActor bool
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show dispatched events from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(limit, byActor)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of events to show")
	cmd.Flags().BoolVar(&byActor, "by-actor", false, "Show event counts per actor instead")
	return cmd
}

func runJournal(limit int, byActor bool) error {
	ctx := context.Background()

	eng, client, err := openJournalClient(ctx)
	if err != nil {
		return err
	}
	defer eng.log.Sync()
	defer client.Close(ctx)

	if byActor {
		counts, err := client.CountByActor(ctx)
		if err != nil {
			return err
		}
		actors := make([]string, 0, len(counts))
		for actor := range counts {
			actors = append(actors, actor)
		}
		sort.Strings(actors)
		for _, actor := range actors {
			fmt.Fprintf(os.Stdout, "%s: %d\n", actor, counts[actor])
		}
		return nil
	}

	events, err := client.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintln(os.Stdout, "Journal is empty.")
		return nil
	}
	for _, e := range events {
		targetLabel := "-"
		if e.TargetID != nil {
			targetLabel = *e.TargetID
		}
		fmt.Fprintf(os.Stdout, "%d  %s  %s  target=%s", e.Timestamp, e.ActorID, e.ActionID, targetLabel)
		if e.IsMultiTarget() {
			fmt.Fprintf(os.Stdout, "  targets=%d", len(e.Targets))
		}
		fmt.Fprintln(os.Stdout)
	}
	return nil
}
