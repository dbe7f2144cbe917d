package gamification

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EventKind identifies one trackable participation event. The set is closed:
// anything else is rejected at the service boundary.
type EventKind string

const (
	EventJoinSession    EventKind = "join_session"
	EventAskQuestion    EventKind = "ask_question"
	EventAnswerQuestion EventKind = "answer_question"
	EventCompletePoll   EventKind = "complete_poll"
	EventCompleteTask   EventKind = "complete_task"
	EventShareResource  EventKind = "share_resource"
	EventReactToContent EventKind = "react_to_content"
	EventSpeakOnStage   EventKind = "speak_on_stage"
	EventEarlyJoinBonus EventKind = "early_join_bonus"
	EventStayFullBonus  EventKind = "stay_full_bonus"
)

// CounterEventKinds are the kinds a caller may report through the events
// endpoint. Join and the two bonuses are derived by the lifecycle itself.
var CounterEventKinds = []EventKind{
	EventAskQuestion,
	EventAnswerQuestion,
	EventCompletePoll,
	EventCompleteTask,
	EventShareResource,
	EventReactToContent,
	EventSpeakOnStage,
}

// PointPolicy maps event kinds to point values and per-session caps.
// Pure data, no side effects.
type PointPolicy struct {
	points map[EventKind]int
	caps   map[EventKind]int
}

// DefaultPolicy returns the built-in point table.
func DefaultPolicy() *PointPolicy {
	return &PointPolicy{
		points: map[EventKind]int{
			EventJoinSession:    10,
			EventAskQuestion:    5,
			EventAnswerQuestion: 8,
			EventCompletePoll:   5,
			EventCompleteTask:   10,
			EventShareResource:  7,
			EventReactToContent: 1,
			EventSpeakOnStage:   15,
			EventEarlyJoinBonus: 5,
			EventStayFullBonus:  20,
		},
		caps: map[EventKind]int{
			EventReactToContent: 10,
			EventJoinSession:    1,
			EventSpeakOnStage:   1,
			EventEarlyJoinBonus: 1,
			EventStayFullBonus:  1,
		},
	}
}

// Known reports whether kind is part of the closed event set.
func (p *PointPolicy) Known(kind EventKind) bool {
	_, ok := p.points[kind]
	return ok
}

// PointsFor returns the base point value for one occurrence of kind.
// Unknown kinds are worth nothing.
func (p *PointPolicy) PointsFor(kind EventKind) int {
	return p.points[kind]
}

// CapFor returns the per-session occurrence cap for kind. ok=false means
// the kind is uncapped.
func (p *PointPolicy) CapFor(kind EventKind) (int, bool) {
	cap, ok := p.caps[kind]
	return cap, ok
}

type policyFile struct {
	Points map[string]int `yaml:"points"`
	Caps   map[string]int `yaml:"caps"`
}

// LoadPolicy reads a YAML override file on top of the default table.
// Overrides for kinds outside the closed set are rejected.
func LoadPolicy(path string) (*PointPolicy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read point policy file: %w", err)
	}
	var pf policyFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("parse point policy file: %w", err)
	}
	policy := DefaultPolicy()
	for name, value := range pf.Points {
		kind := EventKind(name)
		if !policy.Known(kind) {
			return nil, fmt.Errorf("point policy file: unknown event kind %q", name)
		}
		if value < 0 {
			return nil, fmt.Errorf("point policy file: negative points for %q", name)
		}
		policy.points[kind] = value
	}
	for name, value := range pf.Caps {
		kind := EventKind(name)
		if !policy.Known(kind) {
			return nil, fmt.Errorf("point policy file: unknown event kind %q", name)
		}
		if value < 1 {
			return nil, fmt.Errorf("point policy file: cap for %q must be at least 1", name)
		}
		policy.caps[kind] = value
	}
	return policy, nil
}
