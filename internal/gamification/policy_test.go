package gamification

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPolicyPoints(t *testing.T) {
	policy := DefaultPolicy()
	cases := []struct {
		kind EventKind
		want int
	}{
		{EventJoinSession, 10},
		{EventAskQuestion, 5},
		{EventAnswerQuestion, 8},
		{EventCompletePoll, 5},
		{EventCompleteTask, 10},
		{EventShareResource, 7},
		{EventReactToContent, 1},
		{EventSpeakOnStage, 15},
		{EventEarlyJoinBonus, 5},
		{EventStayFullBonus, 20},
	}
	for _, tc := range cases {
		if got := policy.PointsFor(tc.kind); got != tc.want {
			t.Fatalf("PointsFor(%s)=%d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestDefaultPolicyCaps(t *testing.T) {
	policy := DefaultPolicy()

	cap, ok := policy.CapFor(EventReactToContent)
	if !ok || cap != 10 {
		t.Fatalf("CapFor(react_to_content)=(%d,%v), want (10,true)", cap, ok)
	}
	for _, kind := range []EventKind{EventJoinSession, EventSpeakOnStage, EventEarlyJoinBonus, EventStayFullBonus} {
		cap, ok := policy.CapFor(kind)
		if !ok || cap != 1 {
			t.Fatalf("CapFor(%s)=(%d,%v), want (1,true)", kind, cap, ok)
		}
	}
	if _, ok := policy.CapFor(EventAskQuestion); ok {
		t.Fatalf("CapFor(ask_question) reported a cap, want unlimited")
	}
}

func TestPolicyUnknownKind(t *testing.T) {
	policy := DefaultPolicy()
	if policy.Known("teleport") {
		t.Fatal("Known(teleport)=true, want false")
	}
	if got := policy.PointsFor("teleport"); got != 0 {
		t.Fatalf("PointsFor(teleport)=%d, want 0", got)
	}
}

func writePolicyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write policy file: %v", err)
	}
	return path
}

func TestLoadPolicyOverrides(t *testing.T) {
	path := writePolicyFile(t, "points:\n  ask_question: 12\ncaps:\n  react_to_content: 3\n")
	policy, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}
	if got := policy.PointsFor(EventAskQuestion); got != 12 {
		t.Fatalf("PointsFor(ask_question)=%d after override, want 12", got)
	}
	if cap, ok := policy.CapFor(EventReactToContent); !ok || cap != 3 {
		t.Fatalf("CapFor(react_to_content)=(%d,%v) after override, want (3,true)", cap, ok)
	}
	// untouched kinds keep their defaults
	if got := policy.PointsFor(EventJoinSession); got != 10 {
		t.Fatalf("PointsFor(join_session)=%d, want untouched default 10", got)
	}
}

func TestLoadPolicyRejectsUnknownKind(t *testing.T) {
	path := writePolicyFile(t, "points:\n  teleport: 99\n")
	if _, err := LoadPolicy(path); err == nil {
		t.Fatal("LoadPolicy accepted an unknown event kind")
	}
}

func TestLoadPolicyRejectsNegativePoints(t *testing.T) {
	path := writePolicyFile(t, "points:\n  ask_question: -1\n")
	if _, err := LoadPolicy(path); err == nil {
		t.Fatal("LoadPolicy accepted negative points")
	}
}
