package engine

import (
	"context"
	"errors"
	"time"

	"github.com/solwen/arise/internal/ledger"
	"github.com/solwen/arise/internal/models"
	"github.com/solwen/arise/internal/provider"
	"github.com/solwen/arise/internal/quests"
	"github.com/solwen/arise/internal/skills"
)

// ErrBusy means a maintenance run is already in flight. The call is a
// no-op; the next tick will try again.
var ErrBusy = errors.New("maintenance already running")

// RunMaintenance is the single idempotent entry point for time-driven
// coordination. One invocation, in order: sweep expired quests, then
// at most one provider-driven batch (escalation preempts daily, daily
// preempts weekly), then the skill pool top-up, then cache sweep and
// snapshot save. The busy flag is released on every exit path.
func (e *Engine) RunMaintenance(ctx context.Context, now time.Time) error {
	if !e.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer e.busy.Store(false)

	e.mu.Lock()
	if e.state.Ledger.PlayerName == "" {
		e.mu.Unlock()
		return ErrNotOnboarded
	}

	// Sweep first: stale failed quests must not count toward the new
	// period, and the escalation decision needs the updated counter.
	survivors, expired := quests.SweepExpired(e.state.Quests, now)
	e.state.Quests = survivors
	if expired > 0 {
		e.logger.Printf("swept %d expired quests", expired)
	}
	escalate := ledger.RecordFailure(&e.state.Ledger, expired, e.thresh)

	led := e.state.Ledger
	items := append([]models.Item(nil), e.state.Items...)
	skillSet := append([]models.Skill(nil), e.state.Skills...)
	e.mu.Unlock()

	guided := led.Mode == models.ModeGuided

	// At most one batch per run. An escalation defers any due weekly
	// reset to the next tick so a single run never issues two
	// provider-driven quest batches.
	switch {
	case escalate && guided:
		if err := e.applyEmergency(ctx, &led, now); err != nil {
			return err
		}
	case guided && quests.NeedsDailyReset(&led, now):
		if err := e.applyDaily(ctx, &led, items, now); err != nil {
			return err
		}
	case guided && quests.NeedsWeeklyReset(&led, now):
		if err := e.applyWeekly(ctx, &led, items, skillSet, now); err != nil {
			return err
		}
	}

	if err := e.ensureSkillPool(ctx, guided); err != nil {
		return err
	}

	e.client.SweepCache(now)
	return e.save()
}

func (e *Engine) applyEmergency(ctx context.Context, led *models.Ledger, now time.Time) error {
	res, err := e.client.Generate(ctx, provider.NewEmergencyRequest(led))
	if err != nil {
		return err
	}

	e.mu.Lock()
	quests.ApplyEmergencyBatch(e.state, res.Quests, now)
	// The counter resets only once the batch has landed, so a crash
	// before this point re-triggers escalation rather than losing it.
	ledger.ResetFailures(&e.state.Ledger)
	e.mu.Unlock()
	e.logger.Printf("applied emergency batch (%d quests, source %s)", len(res.Quests), res.Source)
	return nil
}

func (e *Engine) applyDaily(ctx context.Context, led *models.Ledger, items []models.Item, now time.Time) error {
	res, err := e.client.Generate(ctx, provider.NewDailyRequest(led, items))
	if err != nil {
		return err
	}

	e.mu.Lock()
	quests.ApplyDailyBatch(e.state, res.Quests, now)
	e.mu.Unlock()
	e.logger.Printf("applied daily batch (%d quests, source %s)", len(res.Quests), res.Source)
	return nil
}

func (e *Engine) applyWeekly(ctx context.Context, led *models.Ledger, items []models.Item, skillSet []models.Skill, now time.Time) error {
	res, err := e.client.Generate(ctx, provider.NewWeeklyRequest(led, items, skillSet))
	if err != nil {
		return err
	}

	e.mu.Lock()
	quests.ApplyWeeklyBatch(e.state, res.Quests, now)
	if res.Skill != nil {
		e.state.Skills = append(e.state.Skills, skills.FromDraft(*res.Skill))
	}
	e.mu.Unlock()
	e.logger.Printf("applied weekly batch (%d quests, source %s)", len(res.Quests), res.Source)
	return nil
}

// ensureSkillPool tops the candidate pool up to the floor in every
// mode. The deficit is re-checked after the provider round trip: a
// concurrent unlock may have shrunk it, and only enough to reach the
// floor is appended. Manual mode draws from the deterministic basic
// set without a provider call.
func (e *Engine) ensureSkillPool(ctx context.Context, guided bool) error {
	e.mu.Lock()
	deficit := skills.Deficit(e.state.Skills, e.floor)
	led := e.state.Ledger
	e.mu.Unlock()
	if deficit <= 0 {
		return nil
	}

	var drafts []provider.SkillDraft
	if guided {
		res, err := e.client.Generate(ctx, provider.NewSkillFillRequest(&led, deficit))
		if err != nil {
			return err
		}
		drafts = res.Skills
	} else {
		drafts = provider.FallbackSkillFill(deficit)
	}

	e.mu.Lock()
	e.state.Skills = skills.Merge(e.state.Skills, drafts, e.floor)
	e.mu.Unlock()
	e.logger.Printf("skill pool fill (%d requested)", deficit)
	return nil
}

// save writes the snapshot after a completed mutation, never per
// field, so a crash cannot leave a partially applied document.
func (e *Engine) save() error {
	e.mu.Lock()
	e.state.LastKeyIndex = e.client.LastKeyIndex()
	st := *e.state
	st.Quests = append([]models.Quest(nil), e.state.Quests...)
	st.Skills = append([]models.Skill(nil), e.state.Skills...)
	st.Items = append([]models.Item(nil), e.state.Items...)
	e.mu.Unlock()

	if err := e.store.Save(&st); err != nil {
		e.logger.Printf("snapshot save failed: %v", err)
		return err
	}
	return nil
}
