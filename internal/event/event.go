// Package event builds and dispatches the attempt-action wire payload.
package event

import "encoding/json"

// Name is the constant event name carried by every attempt-action payload.
const Name = "core:attempt_action"

// AttemptAction is the outbound wire payload for one action attempt.
//
// Shape is a compatibility contract: when at most one placeholder resolved
// the payload is legacy-shaped and the "targets" key is absent entirely —
// not null, not empty. "targetId" is always present (null when no target)
// and, when set, always equals the chosen primary target.
type AttemptAction struct {
	EventName     string            `json:"eventName"`
	ActorID       string            `json:"actorId"`
	ActionID      string            `json:"actionId"`
	TargetID      *string           `json:"targetId"`
	Targets       map[string]string `json:"targets,omitempty"`
	OriginalInput string            `json:"originalInput"`
	Timestamp     int64             `json:"timestamp"`
}

// Encode renders the payload as JSON.
func (e *AttemptAction) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// TargetIDString returns the primary target or "" when the payload has none.
func (e *AttemptAction) TargetIDString() string {
	if e == nil || e.TargetID == nil {
		return ""
	}
	return *e.TargetID
}

// IsMultiTarget reports whether the payload carries the structured targets
// map.
func (e *AttemptAction) IsMultiTarget() bool {
	return e != nil && len(e.Targets) > 0
}
