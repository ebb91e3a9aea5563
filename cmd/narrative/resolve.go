package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/entity"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/scope"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/trace"
)

func resolveCmd() *cobra.Command {
	var actor string
	var location string
	var traceRun bool
	cmd := &cobra.Command{
		Use:   "resolve <scope>",
		Short: "Evaluate a named scope and print the candidate entity ids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(args[0], actor, location, traceRun)
		},
	}
	cmd.Flags().StringVar(&actor, "actor", "", "Invoking actor entity id")
	cmd.Flags().StringVar(&location, "location", "", "Location override")
	cmd.Flags().BoolVar(&traceRun, "trace", false, "Print an evaluation trace report")
	cmd.MarkFlagRequired("actor")
	return cmd
}

func runResolve(scopeName, actor, location string, traceRun bool) error {
	eng, err := loadEngine(traceRun)
	if err != nil {
		return err
	}
	defer eng.log.Sync()

	expr, ok := eng.world.Scope(scopeName)
	if !ok {
		return fmt.Errorf("scope not found: %s", scopeName)
	}

	ids := eng.resolver.Resolve(context.Background(), expr, scope.EvalContext{
		Actor:    entity.ID(actor),
		Location: entity.ID(location),
	})

	if len(ids) == 0 {
		fmt.Fprintln(os.Stdout, "No candidates.")
	}
	for _, id := range ids {
		fmt.Fprintln(os.Stdout, id)
	}

	if eng.tracer.Enabled() {
		fmt.Fprint(os.Stderr, trace.FormatReport(eng.tracer.Flush()))
	}
	return nil
}
