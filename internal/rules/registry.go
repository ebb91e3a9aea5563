package rules

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Handler executes one typed rule operation.
type Handler interface {
	Execute(ctx context.Context, params map[string]any, ec *ExecutionContext) (any, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, params map[string]any, ec *ExecutionContext) (any, error)

func (f HandlerFunc) Execute(ctx context.Context, params map[string]any, ec *ExecutionContext) (any, error) {
	return f(ctx, params, ec)
}

// Registry maps operation-type strings to handlers. Registration happens
// once at process start; execution looks handlers up without reflection.
type Registry struct {
	handlers map[string]Handler
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{handlers: make(map[string]Handler), log: log}
}

func (r *Registry) Register(opType string, h Handler) error {
	if opType == "" {
		return fmt.Errorf("operation type is required")
	}
	if h == nil {
		return fmt.Errorf("handler for %s is required", opType)
	}
	if _, exists := r.handlers[opType]; exists {
		return fmt.Errorf("duplicate operation type: %s", opType)
	}
	r.handlers[opType] = h
	return nil
}

// Execute dispatches one operation and appends its outcome to the context's
// operation log.
func (r *Registry) Execute(ctx context.Context, opType string, params map[string]any, ec *ExecutionContext) (any, error) {
	h, ok := r.handlers[opType]
	if !ok {
		ec.Record(OperationResult{Operation: opType, Success: false, Detail: "unknown operation type"})
		return nil, fmt.Errorf("unknown operation type: %s", opType)
	}

	out, err := h.Execute(ctx, params, ec)
	result := OperationResult{Operation: opType, Success: err == nil}
	if err != nil {
		result.Detail = err.Error()
		r.log.Warn("rule operation failed",
			zap.String("operation", opType),
			zap.Error(err))
	}
	ec.Record(result)
	return out, err
}
