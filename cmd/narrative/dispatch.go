package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/entity"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/event"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/scope"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/store/sqlite"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/target"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/trace"
)

func dispatchCmd() *cobra.Command {
	var actor string
	var input string
	var dryRun bool
	var traceRun bool
	cmd := &cobra.Command{
		Use:   "dispatch <action>",
		Short: "Resolve an action's targets, build the attempt payload, and dispatch it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatch(args[0], actor, input, dryRun, traceRun)
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "Invoking actor entity id")
	cmd.Flags().StringVar(&input, "input", "", "Raw player input text")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build the payload without writing to the journal")
	cmd.Flags().BoolVar(&traceRun, "trace", false, "Print an evaluation trace report")
	cmd.MarkFlagRequired("actor")
	return cmd
}

func runDispatch(actionID, actor, input string, dryRun, traceRun bool) error {
	ctx := context.Background()

	eng, err := loadEngine(traceRun)
	if err != nil {
		return err
	}
	defer eng.log.Sync()

	action, ok := eng.world.Action(actionID)
	if !ok {
		return fmt.Errorf("action not found: %s", actionID)
	}

	dispatcher, cleanup, err := openDispatcher(ctx, eng, dryRun)
	if err != nil {
		return err
	}
	defer cleanup()

	service := event.NewService(eng.builder, dispatcher, eng.log)

	raw := make([]target.RawCategory, 0, len(action.Targets))
	for _, binding := range action.Targets {
		expr, ok := eng.world.Scope(binding.Scope)
		if !ok {
			return fmt.Errorf("action %s binds undefined scope: %s", action.ID, binding.Scope)
		}
		resolved := eng.resolver.Resolve(ctx, expr, scope.EvalContext{Actor: entity.ID(actor)})
		raw = append(raw, target.CategoryFromIDs(binding.Placeholder, resolved))
	}

	payload, dispatched := service.Attempt(ctx, entity.ID(actor), action.ID, input, raw)

	encoded, err := payload.Encode()
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(encoded))

	if eng.tracer.Enabled() {
		fmt.Fprint(os.Stderr, trace.FormatReport(eng.tracer.Flush()))
	}

	if !dispatched {
		return fmt.Errorf("event dispatch failed")
	}
	return nil
}

// openDispatcher picks the dispatch boundary: the sqlite journal when one is
// configured, otherwise in-memory. Dry runs always stay in memory.
func openDispatcher(ctx context.Context, eng *engine, dryRun bool) (event.Dispatcher, func(), error) {
	if dryRun || eng.cfg.Journal.DSN == "" {
		return event.NewMemoryDispatcher(), func() {}, nil
	}

	client, err := sqlite.Open(ctx, eng.cfg.Journal.DSN, eng.log)
	if err != nil {
		return nil, nil, err
	}
	if err := client.EnsureSchema(ctx); err != nil {
		client.Close(ctx)
		return nil, nil, err
	}
	return client, func() { client.Close(ctx) }, nil
}
