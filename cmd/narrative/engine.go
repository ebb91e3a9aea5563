package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/config"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/entity"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/event"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/scope"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/target"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/trace"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/world"
)

const (
	configFile = "narrative.yaml"
	schemaFile = "schema.yaml"
)

// engine holds one fully wired instance of the core: config, schema, world
// content, the entity snapshot, and the resolution pipeline on top of them.
type engine struct {
	cfg      *config.EngineConfig
	schema   *config.Schema
	world    *world.World
	store    *entity.MemoryStore
	tracer   *trace.Tracer
	resolver *scope.Resolver
	metrics  *event.Metrics
	builder  *event.Builder
	log      *zap.Logger
}

// loadEngine reads the config and schema from the working directory, loads
// the world, and wires the pipeline. traceRun force-enables tracing for this
// invocation regardless of the config.
func loadEngine(traceRun bool) (*engine, error) {
	cfg, err := config.LoadEngineConfig(configFile)
	if err != nil {
		return nil, err
	}

	schema, err := config.LoadSchema(schemaFile)
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	w, err := world.Load(cfg.World.Paths)
	if err != nil {
		return nil, err
	}

	store, err := w.BuildStore()
	if err != nil {
		return nil, err
	}

	tracer := trace.New(cfg.Tracing.SlowestN)
	if cfg.Tracing.Enabled || traceRun {
		tracer.Enable()
	}

	metrics := event.NewMetrics()
	resolver := scope.NewResolver(store, schema, tracer, log)
	builder := event.NewBuilder(target.NewExtractor(log), metrics, tracer, log)

	return &engine{
		cfg:      cfg,
		schema:   schema,
		world:    w,
		store:    store,
		tracer:   tracer,
		resolver: resolver,
		metrics:  metrics,
		builder:  builder,
		log:      log,
	}, nil
}

func newLogger(level string) (*zap.Logger, error) {
	parsed, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = parsed
	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return log, nil
}
