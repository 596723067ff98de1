// Package quests implements the quest lifecycle: the expiry sweep,
// daily/weekly boundary checks, batch application and the two legal
// transitions (Active→Completed, Active→Expired).
package quests

import (
	"errors"
	"time"

	"github.com/solwen/arise/internal/models"
	"github.com/solwen/arise/internal/provider"
)

// Reward defaults per batch kind.
const (
	DailyGold  = 100
	DailyExp   = 50
	WeeklyGold = 500
	WeeklyExp  = 300
)

// EmergencyDeadline is how long an escalation batch stays open.
const EmergencyDeadline = 48 * time.Hour

var (
	// ErrCompleted is returned when mutating a completed quest.
	ErrCompleted = errors.New("quest is completed and immutable")
	// ErrTargetNotReached is returned by Complete before the target.
	ErrTargetNotReached = errors.New("quest target not reached")
	// ErrNotFound is returned when a quest id is unknown.
	ErrNotFound = errors.New("quest not found")
)

// DayLabel renders the daily-reset label for a point in time.
func DayLabel(t time.Time) string {
	return t.Format("2006-01-02")
}

// EndOfDay returns the last representable instant of t's day in t's
// location, the deadline stamped on daily quests.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// SweepExpired partitions the quest set: every quest past its deadline
// and not completed is dropped, everything else survives untouched.
// The expired count feeds the ledger's failure counter. The sweep runs
// in every mode; user-created quests with deadlines expire too.
func SweepExpired(qs []models.Quest, now time.Time) (survivors []models.Quest, expired int) {
	survivors = qs[:0:0]
	for _, q := range qs {
		if q.Expired(now) {
			expired++
			continue
		}
		survivors = append(survivors, q)
	}
	return survivors, expired
}

// NeedsDailyReset reports whether a new daily batch is due: the day
// label moved and the ledger is provider-driven.
func NeedsDailyReset(l *models.Ledger, now time.Time) bool {
	return l.Mode == models.ModeGuided && l.LastDailyReset != DayLabel(now)
}

// NeedsWeeklyReset reports whether a weekly batch is due. A zero
// timestamp (fresh ledger) is due immediately.
func NeedsWeeklyReset(l *models.Ledger, now time.Time) bool {
	if l.Mode != models.ModeGuided {
		return false
	}
	if l.LastWeeklyReset.IsZero() {
		return true
	}
	return now.Sub(l.LastWeeklyReset) >= 7*24*time.Hour
}

// FromDraft adopts a provider quest record into the snapshot with the
// given kind, deadline and reward values.
func FromDraft(d provider.QuestDraft, kind models.QuestKind, deadline time.Time, gold, exp int) models.Quest {
	dl := deadline
	return models.Quest{
		ID:                models.NewID(),
		Title:             d.Title,
		Description:       d.Description,
		Kind:              kind,
		Category:          d.Category,
		Target:            d.Target,
		Deadline:          &dl,
		GoldReward:        gold,
		ExpReward:         exp,
		Reward:            d.Reward,
		MeasurableAction:  d.MeasurableAction,
		TimeCommitment:    d.TimeCommitment,
		Benefit:           d.Benefit,
		PatternCorrection: d.PatternCorrection,
		Competence:        d.Competence,
	}
}

// ApplyDailyBatch replaces all daily quests with the drafts, stamps
// each with an end-of-day deadline and records the reset label.
func ApplyDailyBatch(st *models.State, drafts []provider.QuestDraft, now time.Time) {
	deadline := EndOfDay(now)
	kept := st.Quests[:0:0]
	for _, q := range st.Quests {
		if q.Kind != models.QuestDaily {
			kept = append(kept, q)
		}
	}
	for _, d := range drafts {
		kept = append(kept, FromDraft(d, models.QuestDaily, deadline, DailyGold, DailyExp))
	}
	st.Quests = kept
	st.Ledger.LastDailyReset = DayLabel(now)
}

// ApplyWeeklyBatch replaces all weekly quests with the drafts under a
// 7-day deadline and stamps the weekly reset timestamp.
func ApplyWeeklyBatch(st *models.State, drafts []provider.QuestDraft, now time.Time) {
	deadline := now.Add(7 * 24 * time.Hour)
	kept := st.Quests[:0:0]
	for _, q := range st.Quests {
		if q.Kind != models.QuestWeekly {
			kept = append(kept, q)
		}
	}
	for _, d := range drafts {
		kept = append(kept, FromDraft(d, models.QuestWeekly, deadline, WeeklyGold, WeeklyExp))
	}
	st.Quests = kept
	st.Ledger.LastWeeklyReset = now
}

// ApplyEmergencyBatch adds (never replaces) emergency quests with a
// short deadline. The caller resets the failure counter only after
// this returns.
func ApplyEmergencyBatch(st *models.State, drafts []provider.QuestDraft, now time.Time) {
	deadline := now.Add(EmergencyDeadline)
	for _, d := range drafts {
		st.Quests = append(st.Quests, FromDraft(d, models.QuestEmergency, deadline, DailyGold, DailyExp))
	}
}

// Find returns a pointer into the state's quest slice, or ErrNotFound.
func Find(st *models.State, id string) (*models.Quest, error) {
	for i := range st.Quests {
		if st.Quests[i].ID == id {
			return &st.Quests[i], nil
		}
	}
	return nil, ErrNotFound
}

// Advance increments progress by one, clamped to the target.
func Advance(q *models.Quest) error {
	if q.Completed {
		return ErrCompleted
	}
	if q.Progress < q.Target {
		q.Progress++
	}
	return nil
}

// Complete marks the quest completed once progress has met the
// target. Completed quests are terminal.
func Complete(q *models.Quest) error {
	if q.Completed {
		return ErrCompleted
	}
	if q.Progress < q.Target {
		return ErrTargetNotReached
	}
	q.Completed = true
	return nil
}

// Remove deletes the quest with the given id from the state.
func Remove(st *models.State, id string) error {
	for i := range st.Quests {
		if st.Quests[i].ID == id {
			st.Quests = append(st.Quests[:i], st.Quests[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
