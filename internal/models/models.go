// Package models defines the data carried by a player snapshot.
// It holds only data and defaults; progression rules live elsewhere.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Mode selects who drives quest content.
type Mode string

const (
	// ModeGuided lets the content provider issue daily/weekly batches.
	ModeGuided Mode = "guided"
	// ModeManual disables provider-driven batches; the user authors
	// their own quests and skills. Expiry still applies.
	ModeManual Mode = "manual"
)

// Ledger is the player's numeric progression state.
type Ledger struct {
	PlayerName string `yaml:"player_name"`
	Age        int    `yaml:"age"`
	Goal       string `yaml:"goal"`

	Level             int `yaml:"level"`
	Exp               int `yaml:"exp"`
	MaxExp            int `yaml:"max_exp"`
	Strength          int `yaml:"strength"`
	Agility           int `yaml:"agility"`
	Vitality          int `yaml:"vitality"`
	Sense             int `yaml:"sense"`
	Intelligence      int `yaml:"intelligence"`
	Will              int `yaml:"will"`
	UnallocatedPoints int `yaml:"unallocated_points"`
	Gold              int `yaml:"gold"`
	Fatigue           int `yaml:"fatigue"` // 0..100

	FailedMissions  int       `yaml:"failed_missions"`
	LastDailyReset  string    `yaml:"last_daily_reset"` // day label, e.g. 2026-08-31
	LastWeeklyReset time.Time `yaml:"last_weekly_reset"`

	Mode Mode `yaml:"mode"`
}

// QuestKind classifies a quest's origin and cadence.
type QuestKind string

const (
	QuestDaily       QuestKind = "daily"
	QuestWeekly      QuestKind = "weekly"
	QuestEmergency   QuestKind = "emergency"
	QuestUserCreated QuestKind = "user"
)

// Quest is a trackable objective with progress, a target and an
// optional deadline. A completed quest is immutable.
type Quest struct {
	ID          string     `yaml:"id"`
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Kind        QuestKind  `yaml:"kind"`
	Category    string     `yaml:"category"`
	Progress    int        `yaml:"progress"`
	Target      int        `yaml:"target"`
	Completed   bool       `yaml:"completed"`
	Deadline    *time.Time `yaml:"deadline,omitempty"`
	GoldReward  int        `yaml:"gold_reward"`
	ExpReward   int        `yaml:"exp_reward"`

	// Free-text rationale carried opaquely from the provider.
	Reward            string `yaml:"reward,omitempty"`
	MeasurableAction  string `yaml:"measurable_action,omitempty"`
	TimeCommitment    string `yaml:"time_commitment,omitempty"`
	Benefit           string `yaml:"benefit,omitempty"`
	PatternCorrection string `yaml:"pattern_correction,omitempty"`
	Competence        string `yaml:"competence,omitempty"`
}

// Expired reports whether the quest is past its deadline and still
// incomplete. Quests with no deadline never expire.
func (q *Quest) Expired(now time.Time) bool {
	return q.Deadline != nil && !q.Completed && now.After(*q.Deadline)
}

// Skill is an unlockable capability gated behind a verification task.
type Skill struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Kind        string  `yaml:"kind"`
	Description string  `yaml:"description"`
	Requirement string  `yaml:"requirement,omitempty"`
	Bonus       string  `yaml:"bonus,omitempty"`
	Unlocked    bool    `yaml:"unlocked"`
	TestTask    string  `yaml:"test_task"`
	TestTarget  float64 `yaml:"test_target"`
	TestUnit    string  `yaml:"test_unit"`
	Generated   bool    `yaml:"generated"`
}

// Item is an owned-resource registry entry folded into generation
// prompts ("available hardware").
type Item struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
	Owned       bool   `yaml:"owned"`
	Bonus       string `yaml:"bonus,omitempty"`
}

// SnapshotVersion is the current State document version.
const SnapshotVersion = 1

// State is the single versioned document the engine persists.
type State struct {
	Version      int     `yaml:"version"`
	Ledger       Ledger  `yaml:"ledger"`
	Quests       []Quest `yaml:"quests"`
	Skills       []Skill `yaml:"skills"`
	Items        []Item  `yaml:"items"`
	LastKeyIndex int     `yaml:"last_key_index"`
}

// NewLedger returns a ledger with onboarding defaults.
func NewLedger(name string, age int, goal string) Ledger {
	return Ledger{
		PlayerName:   name,
		Age:          age,
		Goal:         goal,
		Level:        1,
		Exp:          0,
		MaxExp:       100,
		Strength:     1,
		Agility:      1,
		Vitality:     1,
		Sense:        1,
		Intelligence: 1,
		Will:         1,
		Mode:         ModeGuided,
	}
}

// NewState returns a fresh snapshot with the starter item registry.
func NewState() *State {
	return &State{
		Version: SnapshotVersion,
		Ledger:  NewLedger("", 0, ""),
		Items: []Item{
			{ID: NewID(), Name: "PAPER JOURNAL", Category: "journal", Description: "A log of failures and corrections.", Bonus: "Mental focus"},
			{ID: NewID(), Name: "GYM ACCESS", Category: "training", Description: "Weighted training grounds.", Bonus: "Raw strength"},
		},
	}
}

// Normalize fills zero-valued fields that older snapshots may lack so
// the schema stays forward-compatible.
func (s *State) Normalize() {
	if s.Version == 0 {
		s.Version = SnapshotVersion
	}
	l := &s.Ledger
	if l.Level == 0 {
		l.Level = 1
	}
	if l.MaxExp == 0 {
		l.MaxExp = 100
	}
	if l.Mode == "" {
		l.Mode = ModeGuided
	}
	if l.Fatigue < 0 {
		l.Fatigue = 0
	}
	if l.Fatigue > 100 {
		l.Fatigue = 100
	}
	for i := range s.Quests {
		if s.Quests[i].ID == "" {
			s.Quests[i].ID = NewID()
		}
		if s.Quests[i].Target <= 0 {
			s.Quests[i].Target = 1
		}
	}
	for i := range s.Skills {
		if s.Skills[i].ID == "" {
			s.Skills[i].ID = NewID()
		}
	}
}

// NewID mints a unique identifier for quests, skills and items.
func NewID() string {
	return uuid.NewString()
}
