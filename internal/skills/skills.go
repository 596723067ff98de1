// Package skills maintains the candidate pool: generated, not yet
// unlocked skills kept at or above a configured floor.
package skills

import (
	"github.com/solwen/arise/internal/models"
	"github.com/solwen/arise/internal/provider"
)

// DefaultFloor is the minimum candidate pool size.
const DefaultFloor = 5

// CandidateCount counts generated skills that are still locked. User
// authored skills never count toward the pool.
func CandidateCount(skills []models.Skill) int {
	n := 0
	for _, s := range skills {
		if s.Generated && !s.Unlocked {
			n++
		}
	}
	return n
}

// Deficit returns how many skills a fill request should ask for, zero
// when the pool is at or above the floor.
func Deficit(skills []models.Skill, floor int) int {
	d := floor - CandidateCount(skills)
	if d < 0 {
		return 0
	}
	return d
}

// FromDraft adopts a provider skill record as a locked pool candidate.
func FromDraft(d provider.SkillDraft) models.Skill {
	return models.Skill{
		ID:          models.NewID(),
		Name:        d.Name,
		Kind:        d.Type,
		Description: d.Description,
		Requirement: d.Requirement,
		Bonus:       d.Bonus,
		TestTask:    d.TestTask,
		TestTarget:  d.TestTarget,
		TestUnit:    d.TestUnit,
		Generated:   true,
	}
}

// Merge appends generated drafts to the skill set, re-checking the
// live candidate count so a fill that raced a concurrent unlock or a
// duplicate trigger tops the pool up to the floor without overshooting
// it.
func Merge(existing []models.Skill, drafts []provider.SkillDraft, floor int) []models.Skill {
	room := Deficit(existing, floor)
	for _, d := range drafts {
		if room <= 0 {
			break
		}
		existing = append(existing, FromDraft(d))
		room--
	}
	return existing
}
