// Package mcp exposes the engine over the Model Context Protocol so agent
// tooling can inspect world state and drive action attempts.
package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/config"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/entity"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/event"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/scope"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/world"
)

type Server struct {
	schema   *config.Schema
	world    *world.World
	store    entity.Reader
	resolver *scope.Resolver
	service  *event.Service
	metrics  *event.Metrics
	mcp      *sdk.Server
}

func NewServer(schema *config.Schema, w *world.World, store entity.Reader, resolver *scope.Resolver, service *event.Service, metrics *event.Metrics, version string) *Server {
	s := &Server{
		schema:   schema,
		world:    w,
		store:    store,
		resolver: resolver,
		service:  service,
		metrics:  metrics,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "narrative",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
