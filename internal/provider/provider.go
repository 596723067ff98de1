// Package provider implements the resilient content provider client:
// credential rotation, bounded transient retry, schema enforcement of
// structured output, a fingerprint-keyed response cache, and a
// deterministic offline fallback. Generate never fails for transient
// provider faults; it degrades to the fallback instead.
package provider

import (
	"context"
	"fmt"
	"time"
)

// Intent tags a prompt with the result shape the caller expects.
type Intent string

const (
	// IntentDailyQuests expects an array of quest records.
	IntentDailyQuests Intent = "daily-quests"
	// IntentWeeklyBatch expects an object with a quest array and an
	// optional skill record.
	IntentWeeklyBatch Intent = "weekly-batch"
	// IntentSkillFill expects an array of skill records.
	IntentSkillFill Intent = "skill-fill"
	// IntentChat expects free text.
	IntentChat Intent = "chat"
)

func (i Intent) IsValid() bool {
	switch i {
	case IntentDailyQuests, IntentWeeklyBatch, IntentSkillFill, IntentChat:
		return true
	default:
		return false
	}
}

// Request is one structured prompt for the provider.
type Request struct {
	Intent Intent
	Prompt string

	// Count is the number of records requested (skill-fill only).
	Count int

	// emergency marks a daily-quests request issued by escalation, so
	// the fallback serves corrective protocols instead of routines.
	emergency bool
}

// QuestDraft is a provider-shaped quest record before it is adopted
// into the snapshot.
type QuestDraft struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	Category          string `json:"category"`
	Target            int    `json:"target"`
	Reward            string `json:"reward"`
	MeasurableAction  string `json:"measurableAction,omitempty"`
	TimeCommitment    string `json:"timeCommitment,omitempty"`
	Benefit           string `json:"biologicalBenefit,omitempty"`
	PatternCorrection string `json:"patternCorrection,omitempty"`
	Competence        string `json:"competenceDeveloped,omitempty"`
	DeadlineDays      int    `json:"deadlineDays,omitempty"`
}

// SkillDraft is a provider-shaped skill record.
type SkillDraft struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Requirement string  `json:"requirement,omitempty"`
	Bonus       string  `json:"efficiencyBonus,omitempty"`
	TestTask    string  `json:"testTask"`
	TestTarget  float64 `json:"testTarget"`
	TestUnit    string  `json:"testUnit"`
}

// Source records where a result came from.
type Source string

const (
	SourceProvider Source = "provider"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

// Result is the structured outcome of a Generate call. Which fields
// are set depends on the request intent.
type Result struct {
	Quests []QuestDraft
	Skill  *SkillDraft
	Skills []SkillDraft
	Text   string
	Source Source
}

// StatusError is a provider rejection with an HTTP-style status code.
// Codes 429, 400 and 401 mark the credential as exhausted for this
// call; everything else is a transient fault.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider status %d: %s", e.Code, e.Body)
}

// keyExhausted reports whether err means the current credential should
// be skipped without counting against the transient retry budget.
func keyExhausted(code int) bool {
	return code == 429 || code == 400 || code == 401
}

// Payload is one prompt exchange framed for a transport.
type Payload struct {
	System string
	Prompt string
}

// Transport sends a structured prompt under one credential and returns
// the raw text of the response. Implementations return *StatusError
// for provider rejections so the client can classify them.
type Transport interface {
	Send(ctx context.Context, credential string, p Payload) (string, error)
}

// RetryPolicy bounds the client's behavior under transient faults.
// It is a value, injected and swappable, rather than behavior hidden
// inside the call loop.
type RetryPolicy struct {
	// MaxTransient is the number of transient faults tolerated within
	// one Generate call before falling through to the fallback.
	MaxTransient int
	// Backoff is slept after a transient fault before the next key is
	// tried.
	Backoff time.Duration
	// AttemptTimeout bounds a single transport attempt.
	AttemptTimeout time.Duration
}

// DefaultPolicy returns the retry policy used when none is configured.
func DefaultPolicy() RetryPolicy {
	return RetryPolicy{
		MaxTransient:   2,
		Backoff:        2 * time.Second,
		AttemptTimeout: 30 * time.Second,
	}
}
