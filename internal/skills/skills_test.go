package skills

import (
	"testing"

	"github.com/solwen/arise/internal/models"
	"github.com/solwen/arise/internal/provider"
)

func pool(generatedLocked, unlocked, user int) []models.Skill {
	var ss []models.Skill
	for i := 0; i < generatedLocked; i++ {
		ss = append(ss, models.Skill{ID: models.NewID(), Name: "GEN", Generated: true})
	}
	for i := 0; i < unlocked; i++ {
		ss = append(ss, models.Skill{ID: models.NewID(), Name: "OWNED", Generated: true, Unlocked: true})
	}
	for i := 0; i < user; i++ {
		ss = append(ss, models.Skill{ID: models.NewID(), Name: "MINE"})
	}
	return ss
}

func skillDrafts(n int) []provider.SkillDraft {
	var ds []provider.SkillDraft
	for i := 0; i < n; i++ {
		ds = append(ds, provider.SkillDraft{
			Name: "DRAFT", Type: "ACTIVE", Description: "d",
			TestTask: "pushups", TestTarget: 20, TestUnit: "reps",
		})
	}
	return ds
}

func TestCandidateCount(t *testing.T) {
	// Unlocked and user-authored skills never count toward the pool.
	if got := CandidateCount(pool(2, 3, 4)); got != 2 {
		t.Errorf("CandidateCount = %d, want 2", got)
	}
	if got := CandidateCount(nil); got != 0 {
		t.Errorf("CandidateCount(nil) = %d, want 0", got)
	}
}

func TestDeficit(t *testing.T) {
	tests := []struct {
		candidates int
		want       int
	}{
		{0, 5},
		{2, 3},
		{5, 0},
		{7, 0},
	}
	for _, tt := range tests {
		if got := Deficit(pool(tt.candidates, 1, 1), DefaultFloor); got != tt.want {
			t.Errorf("Deficit with %d candidates = %d, want %d", tt.candidates, got, tt.want)
		}
	}
}

func TestMergeTopsUpToFloor(t *testing.T) {
	ss := pool(2, 0, 0)
	ss = Merge(ss, skillDrafts(5), DefaultFloor)
	if got := CandidateCount(ss); got != DefaultFloor {
		t.Errorf("pool after merge = %d, want %d", got, DefaultFloor)
	}
	if len(ss) != 5 {
		t.Errorf("len = %d, want 5", len(ss))
	}
}

func TestMergeRechecksLiveCount(t *testing.T) {
	// A fill requested at deficit 3 lands after the pool already grew
	// to 4 candidates. Only one draft may be admitted.
	ss := pool(4, 0, 0)
	ss = Merge(ss, skillDrafts(3), DefaultFloor)
	if got := CandidateCount(ss); got != DefaultFloor {
		t.Errorf("pool after racing merge = %d, want %d", got, DefaultFloor)
	}
}

func TestMergeNoRoom(t *testing.T) {
	ss := pool(5, 0, 0)
	merged := Merge(ss, skillDrafts(2), DefaultFloor)
	if len(merged) != 5 {
		t.Errorf("merge into full pool grew it to %d", len(merged))
	}
}

func TestFromDraftIsLockedCandidate(t *testing.T) {
	s := FromDraft(provider.SkillDraft{
		Name: "IRON LUNGS", Type: "PASSIVE", Description: "breath control",
		TestTask: "breath hold", TestTarget: 90, TestUnit: "seconds",
	})
	if !s.Generated || s.Unlocked {
		t.Errorf("draft must enter the pool locked and generated: %+v", s)
	}
	if s.ID == "" {
		t.Error("draft skill missing id")
	}
	if s.TestTarget != 90 || s.TestUnit != "seconds" {
		t.Errorf("unlock test not carried: %+v", s)
	}
}
