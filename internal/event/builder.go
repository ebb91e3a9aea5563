package event

import (
	"time"

	"go.uber.org/zap"

	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/entity"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/target"
	"github.com/joeloverbeck/living-narrative-engine-sub004/internal/trace"
)

const tracerName = "event"

// Builder constructs attempt-action payloads from raw target categories.
// Build never fails: a structural extraction failure degrades to a fallback
// legacy payload so the dispatch path is never broken by bad rule content.
type Builder struct {
	extractor *target.Extractor
	metrics   *Metrics
	tracer    *trace.Tracer
	log       *zap.Logger
	now       func() time.Time
}

func NewBuilder(extractor *target.Extractor, metrics *Metrics, tracer *trace.Tracer, log *zap.Logger) *Builder {
	if extractor == nil {
		panic("event: nil extractor")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		extractor: extractor,
		metrics:   metrics,
		tracer:    tracer,
		log:       log,
		now:       time.Now,
	}
}

// Build extracts targets from the raw categories and assembles the payload.
//
// At most one resolved placeholder yields the legacy shape (no targets key);
// two or more yield the structured shape with targetId set to the chosen
// primary. Extraction failure yields the fallback payload: legacy shape,
// null targetId, every other field populated from known-good inputs.
func (b *Builder) Build(actorID entity.ID, actionID, originalInput string, raw []target.RawCategory) *AttemptAction {
	step := b.tracer.StartStep(tracerName, actionID)
	defer step.End()

	payload := &AttemptAction{
		EventName:     Name,
		ActorID:       string(actorID),
		ActionID:      actionID,
		OriginalInput: originalInput,
		Timestamp:     b.now().UnixMilli(),
	}

	ext, err := b.extractor.Extract(raw)
	if err != nil {
		b.log.Warn("target extraction failed, dispatching fallback payload",
			zap.String("actor", string(actorID)),
			zap.String("action", actionID),
			zap.Error(err))
		b.metrics.countFallback()
		return payload
	}

	if primary, ok := ext.Primary(); ok {
		id := string(primary)
		payload.TargetID = &id
	}

	if ext.Len() >= 2 {
		payload.Targets = ext.TargetsMap()
		b.metrics.countMultiTarget()
	} else {
		b.metrics.countLegacy()
	}
	return payload
}
