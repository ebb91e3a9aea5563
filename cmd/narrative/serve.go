package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/event"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/mcp"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	eng, err := loadEngine(false)
	if err != nil {
		return err
	}
	defer eng.log.Sync()

	dispatcher, cleanup, err := openDispatcher(ctx, eng, false)
	if err != nil {
		return err
	}
	defer cleanup()

	service := event.NewService(eng.builder, dispatcher, eng.log)

	server := mcp.NewServer(eng.schema, eng.world, eng.store, eng.resolver, service, eng.metrics, version)
	return server.Run(ctx, &sdk.StdioTransport{})
}
