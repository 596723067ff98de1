// Package engine is the orchestrator: it owns the in-memory snapshot,
// serializes all mutations, single-flights maintenance runs, and is
// the only surface the presentation layer talks to.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/solwen/arise/internal/ledger"
	"github.com/solwen/arise/internal/models"
	"github.com/solwen/arise/internal/provider"
	"github.com/solwen/arise/internal/quests"
	"github.com/solwen/arise/internal/skills"
)

var (
	// ErrNotOnboarded is returned by operations that need a player.
	ErrNotOnboarded = errors.New("no player profile yet")
	// ErrNotCompleted is returned when dismissing an active quest.
	ErrNotCompleted = errors.New("quest is not completed")
)

// freeModeChatLine answers chat in manual mode without a provider
// round trip.
const freeModeChatLine = "FREE MODE ACTIVE. The Architect does not answer here. Author your own protocols."

// Options configures an Engine.
type Options struct {
	Store  models.Store
	Client *provider.Client
	// SkillFloor is the candidate pool minimum (default 5).
	SkillFloor int
	// FailureThreshold is the failed-mission count above which an
	// emergency batch is owed (default 3).
	FailureThreshold int
	Logger           *log.Logger
}

// Engine coordinates the ledger, quest lifecycle, skill pool and
// content client over one player snapshot.
type Engine struct {
	store  models.Store
	client *provider.Client
	floor  int
	thresh int
	logger *log.Logger

	// mu renders the single logical thread of control: it guards all
	// snapshot mutation and is released across provider calls.
	mu    sync.Mutex
	state *models.State

	// busy single-flights maintenance; it is the only guard against
	// overlapping provider-driven mutation runs.
	busy atomic.Bool

	chat []provider.ChatEntry
}

// New loads the persisted snapshot (or starts fresh) and wires the
// engine together.
func New(opts Options) (*Engine, error) {
	if opts.Store == nil || opts.Client == nil {
		return nil, errors.New("engine: store and client are required")
	}
	if opts.SkillFloor <= 0 {
		opts.SkillFloor = skills.DefaultFloor
	}
	if opts.FailureThreshold <= 0 {
		opts.FailureThreshold = ledger.DefaultEscalationThreshold
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}

	st, err := opts.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if st == nil {
		st = models.NewState()
	}
	opts.Client.RestoreKeyIndex(st.LastKeyIndex)

	return &Engine{
		store:  opts.Store,
		client: opts.Client,
		floor:  opts.SkillFloor,
		thresh: opts.FailureThreshold,
		logger: opts.Logger,
		state:  st,
	}, nil
}

// Onboarded reports whether a player profile exists.
func (e *Engine) Onboarded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Ledger.PlayerName != ""
}

// Awaken creates the player profile. Both periodic batches are due on
// a fresh ledger; maintenance issues the daily batch on its first run
// and the weekly on the next, one batch per run.
func (e *Engine) Awaken(name string, age int, goal string) error {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return errors.New("player name is required")
	}

	e.mu.Lock()
	items := e.state.Items
	*e.state = models.State{
		Version: models.SnapshotVersion,
		Ledger:  models.NewLedger(name, age, strings.TrimSpace(goal)),
		Items:   items,
	}
	e.mu.Unlock()
	return e.save()
}

// Snapshot returns a copy of the current state for rendering. Slices
// are cloned so the caller cannot mutate engine state.
func (e *Engine) Snapshot() models.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := *e.state
	st.Quests = append([]models.Quest(nil), e.state.Quests...)
	st.Skills = append([]models.Skill(nil), e.state.Skills...)
	st.Items = append([]models.Item(nil), e.state.Items...)
	return st
}

// SetMode switches between guided and manual content modes.
func (e *Engine) SetMode(m models.Mode) error {
	if m != models.ModeGuided && m != models.ModeManual {
		return fmt.Errorf("unknown mode %q", m)
	}
	e.mu.Lock()
	e.state.Ledger.Mode = m
	e.mu.Unlock()
	return e.save()
}

// AdvanceQuest increments a quest's progress by one.
func (e *Engine) AdvanceQuest(id string) error {
	e.mu.Lock()
	q, err := quests.Find(e.state, id)
	if err == nil {
		err = quests.Advance(q)
	}
	e.mu.Unlock()
	if err != nil {
		return err
	}
	return e.save()
}

// CompleteQuest finishes a quest whose progress has met its target and
// credits its rewards. It returns the number of level-ups so the
// caller can celebrate them.
func (e *Engine) CompleteQuest(id string) (int, error) {
	e.mu.Lock()
	q, err := quests.Find(e.state, id)
	if err != nil {
		e.mu.Unlock()
		return 0, err
	}
	if err := quests.Complete(q); err != nil {
		e.mu.Unlock()
		return 0, err
	}
	levelUps := ledger.CreditReward(&e.state.Ledger, q.GoldReward, q.ExpReward)
	e.mu.Unlock()
	if err := e.save(); err != nil {
		return levelUps, err
	}
	return levelUps, nil
}

// DismissQuest removes a quest from the board. Provider quests must be
// completed first; user-created quests can be pruned at any time.
func (e *Engine) DismissQuest(id string) error {
	e.mu.Lock()
	q, err := quests.Find(e.state, id)
	if err == nil && !q.Completed && q.Kind != models.QuestUserCreated {
		err = ErrNotCompleted
	}
	if err == nil {
		err = quests.Remove(e.state, id)
	}
	e.mu.Unlock()
	if err != nil {
		return err
	}
	return e.save()
}

// AllocatePoint spends one unallocated point on an attribute.
func (e *Engine) AllocatePoint(attr ledger.Attribute) error {
	e.mu.Lock()
	err := ledger.AllocatePoint(&e.state.Ledger, attr)
	e.mu.Unlock()
	if err != nil {
		return err
	}
	return e.save()
}

// UserQuestInput is a manually authored quest.
type UserQuestInput struct {
	Title        string
	Description  string
	Category     string
	Target       int
	Reward       string
	DeadlineDays int
}

// AddUserQuest appends a user-created quest. DeadlineDays of zero
// means no deadline.
func (e *Engine) AddUserQuest(in UserQuestInput, now time.Time) (string, error) {
	if strings.TrimSpace(in.Title) == "" {
		return "", errors.New("quest title is required")
	}
	if in.Target <= 0 {
		in.Target = 1
	}
	q := models.Quest{
		ID:          models.NewID(),
		Title:       in.Title,
		Description: in.Description,
		Kind:        models.QuestUserCreated,
		Category:    in.Category,
		Target:      in.Target,
		Reward:      in.Reward,
		GoldReward:  quests.DailyGold,
		ExpReward:   quests.DailyExp,
	}
	if in.DeadlineDays > 0 {
		dl := now.AddDate(0, 0, in.DeadlineDays)
		q.Deadline = &dl
	}

	e.mu.Lock()
	e.state.Quests = append(e.state.Quests, q)
	e.mu.Unlock()
	if err := e.save(); err != nil {
		return q.ID, err
	}
	return q.ID, nil
}

// UserSkillInput is a manually authored skill.
type UserSkillInput struct {
	Name        string
	Kind        string
	Description string
	TestTask    string
	TestTarget  float64
	TestUnit    string
}

// AddUserSkill appends a user-authored skill. It never counts toward
// the generated candidate pool.
func (e *Engine) AddUserSkill(in UserSkillInput) (string, error) {
	if strings.TrimSpace(in.Name) == "" {
		return "", errors.New("skill name is required")
	}
	s := models.Skill{
		ID:          models.NewID(),
		Name:        in.Name,
		Kind:        in.Kind,
		Description: in.Description,
		TestTask:    in.TestTask,
		TestTarget:  in.TestTarget,
		TestUnit:    in.TestUnit,
	}

	e.mu.Lock()
	e.state.Skills = append(e.state.Skills, s)
	e.mu.Unlock()
	if err := e.save(); err != nil {
		return s.ID, err
	}
	return s.ID, nil
}

// UnlockSkill records a passed verification test.
func (e *Engine) UnlockSkill(id string) error {
	e.mu.Lock()
	var err error = errors.New("skill not found")
	for i := range e.state.Skills {
		if e.state.Skills[i].ID == id {
			e.state.Skills[i].Unlocked = true
			err = nil
			break
		}
	}
	e.mu.Unlock()
	if err != nil {
		return err
	}
	return e.save()
}

// ToggleItem flips an item's owned flag.
func (e *Engine) ToggleItem(id string) error {
	e.mu.Lock()
	var err error = errors.New("item not found")
	for i := range e.state.Items {
		if e.state.Items[i].ID == id {
			e.state.Items[i].Owned = !e.state.Items[i].Owned
			err = nil
			break
		}
	}
	e.mu.Unlock()
	if err != nil {
		return err
	}
	return e.save()
}

// AddItem registers a custom owned item.
func (e *Engine) AddItem(name, category, description string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("item name is required")
	}
	it := models.Item{
		ID:          models.NewID(),
		Name:        name,
		Category:    category,
		Description: description,
		Owned:       true,
	}
	e.mu.Lock()
	e.state.Items = append(e.state.Items, it)
	e.mu.Unlock()
	if err := e.save(); err != nil {
		return it.ID, err
	}
	return it.ID, nil
}

// Chat exchanges one message with the Architect. Manual mode answers
// with a canned line and never calls the provider.
func (e *Engine) Chat(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("empty message")
	}

	e.mu.Lock()
	if e.state.Ledger.Mode == models.ModeManual {
		e.mu.Unlock()
		return freeModeChatLine, nil
	}
	led := e.state.Ledger
	history := append([]provider.ChatEntry(nil), e.chat...)
	e.mu.Unlock()

	res, err := e.client.Generate(ctx, provider.NewChatRequest(&led, history, message))
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	e.chat = append(e.chat,
		provider.ChatEntry{Role: "unit", Text: message},
		provider.ChatEntry{Role: "architect", Text: res.Text},
	)
	e.mu.Unlock()
	return res.Text, nil
}
