package provider

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"
)

const validQuestJSON = `[
  {"title": "RUN", "description": "Run 2km", "category": "PHYSICAL", "target": 1, "reward": "+2 VITALITY"},
  {"title": "READ", "description": "Read 20 pages", "category": "COGNITIVE", "target": 20, "reward": "+1 SENSE"}
]`

const validSkillJSON = `[
  {"name": "IRON GRIP", "type": "MOTOR", "description": "d", "requirement": "Level 1+",
   "testTask": "dead hang", "testTarget": 60, "testUnit": "seconds"}
]`

// scriptedTransport answers per credential and records every call.
type scriptedTransport struct {
	mu      sync.Mutex
	replies map[string]func() (string, error)
	calls   []string
}

func (s *scriptedTransport) Send(_ context.Context, cred string, _ Payload) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, cred)
	fn := s.replies[cred]
	s.mu.Unlock()
	if fn == nil {
		return "", errors.New("unexpected credential " + cred)
	}
	return fn()
}

func (s *scriptedTransport) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func reply(raw string) func() (string, error) {
	return func() (string, error) { return raw, nil }
}

func replyStatus(code int) func() (string, error) {
	return func() (string, error) { return "", &StatusError{Code: code, Body: "nope"} }
}

func newTestClient(t Transport, creds []string) *Client {
	c := New(t, Options{
		Credentials: creds,
		Policy:      RetryPolicy{MaxTransient: 2, Backoff: time.Millisecond, AttemptTimeout: time.Second},
		Logger:      log.New(io.Discard, "", 0),
	})
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func dailyReq(prompt string) Request {
	return Request{Intent: IntentDailyQuests, Prompt: prompt}
}

func TestGenerateRotatesPastExhaustedKey(t *testing.T) {
	tr := &scriptedTransport{replies: map[string]func() (string, error){
		"A": replyStatus(429),
		"B": reply(validQuestJSON),
		"C": replyStatus(401),
	}}
	c := newTestClient(tr, []string{"A", "B", "C"})

	res, err := c.Generate(context.Background(), dailyReq("first prompt"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Source != SourceProvider {
		t.Fatalf("source = %s, want provider", res.Source)
	}
	if len(res.Quests) != 2 || res.Quests[0].Title != "RUN" {
		t.Fatalf("unexpected quests: %+v", res.Quests)
	}
	if got := c.LastKeyIndex(); got != 1 {
		t.Errorf("LastKeyIndex = %d, want 1", got)
	}

	// The next call starts at the last good key: B answers first.
	if _, err := c.Generate(context.Background(), dailyReq("second prompt")); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	calls := tr.sent()
	if want := []string{"A", "B", "B"}; len(calls) != 3 || calls[2] != "B" {
		t.Errorf("transport calls = %v, want %v", calls, want)
	}
}

func TestGenerateExhaustedKeysServeFallback(t *testing.T) {
	tr := &scriptedTransport{replies: map[string]func() (string, error){
		"A": replyStatus(401),
		"B": replyStatus(429),
	}}
	c := newTestClient(tr, []string{"A", "B"})

	res, err := c.Generate(context.Background(), dailyReq("p"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Source != SourceFallback {
		t.Errorf("source = %s, want fallback", res.Source)
	}
	if len(res.Quests) == 0 {
		t.Error("fallback daily batch is empty")
	}
}

func TestGenerateTransientBudget(t *testing.T) {
	faults := 0
	tr := &scriptedTransport{replies: map[string]func() (string, error){
		"A": func() (string, error) {
			faults++
			return "", errors.New("connection reset")
		},
	}}
	c := newTestClient(tr, []string{"A"})

	res, err := c.Generate(context.Background(), dailyReq("p"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Source != SourceFallback {
		t.Errorf("source = %s, want fallback", res.Source)
	}
	// A single key is tried once per rotation pass.
	if faults != 1 {
		t.Errorf("transport faults = %d, want 1", faults)
	}
}

func TestGenerateSchemaMismatchIsTransient(t *testing.T) {
	tr := &scriptedTransport{replies: map[string]func() (string, error){
		"A": reply(`{"oops": true}`),
	}}
	c := newTestClient(tr, []string{"A"})

	res, err := c.Generate(context.Background(), dailyReq("p"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Source != SourceFallback {
		t.Errorf("schema mismatch must degrade to fallback, got %s", res.Source)
	}
}

func TestGenerateOffline(t *testing.T) {
	c := newTestClient(&scriptedTransport{}, nil)
	res, err := c.Generate(context.Background(), dailyReq("p"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Source != SourceFallback {
		t.Errorf("offline client must answer from fallback, got %s", res.Source)
	}
}

func TestGenerateCaching(t *testing.T) {
	tr := &scriptedTransport{replies: map[string]func() (string, error){
		"A": reply(validQuestJSON),
	}}
	c := newTestClient(tr, []string{"A"})
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	if _, err := c.Generate(context.Background(), dailyReq("same prompt")); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// Cosmetic whitespace differences hit the same entry.
	res, err := c.Generate(context.Background(), dailyReq("same   prompt"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Source != SourceCache {
		t.Errorf("second call source = %s, want cache", res.Source)
	}
	if calls := tr.sent(); len(calls) != 1 {
		t.Errorf("transport calls = %d, want 1", len(calls))
	}

	// After the TTL the entry is evicted and the provider is hit again.
	c.now = func() time.Time { return base.Add(2 * time.Hour) }
	if n := c.SweepCache(c.now()); n != 1 {
		t.Errorf("swept %d entries, want 1", n)
	}
	res, err = c.Generate(context.Background(), dailyReq("same prompt"))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Source != SourceProvider {
		t.Errorf("post-expiry source = %s, want provider", res.Source)
	}
}

func TestGenerateRejectsMalformedRequests(t *testing.T) {
	c := newTestClient(&scriptedTransport{}, []string{"A"})
	if _, err := c.Generate(context.Background(), Request{Intent: "bogus", Prompt: "p"}); err == nil {
		t.Error("invalid intent must error")
	}
	if _, err := c.Generate(context.Background(), Request{Intent: IntentChat}); err == nil {
		t.Error("empty prompt must error")
	}
}

func TestRestoreKeyIndex(t *testing.T) {
	c := newTestClient(&scriptedTransport{}, []string{"A", "B", "C"})
	c.RestoreKeyIndex(2)
	if got := c.LastKeyIndex(); got != 2 {
		t.Errorf("LastKeyIndex = %d, want 2", got)
	}
	c.RestoreKeyIndex(7)
	if got := c.LastKeyIndex(); got != 2 {
		t.Errorf("out-of-range restore changed index to %d", got)
	}
	c.RestoreKeyIndex(-1)
	if got := c.LastKeyIndex(); got != 2 {
		t.Errorf("negative restore changed index to %d", got)
	}
}

func TestFallbackShapes(t *testing.T) {
	daily := fallbackResult(Request{Intent: IntentDailyQuests, Prompt: "p"})
	if len(daily.Quests) == 0 || daily.Quests[0].Title == "PROTOCOL RECOVERY" {
		t.Errorf("daily fallback wrong: %+v", daily.Quests)
	}

	emergency := fallbackResult(Request{Intent: IntentDailyQuests, Prompt: "p", emergency: true})
	if len(emergency.Quests) == 0 || emergency.Quests[0].Title != "PROTOCOL RECOVERY" {
		t.Errorf("emergency fallback wrong: %+v", emergency.Quests)
	}

	weekly := fallbackResult(Request{Intent: IntentWeeklyBatch, Prompt: "p"})
	if len(weekly.Quests) != 1 || weekly.Skill == nil {
		t.Errorf("weekly fallback wrong: %+v", weekly)
	}

	skills := fallbackResult(Request{Intent: IntentSkillFill, Prompt: "p", Count: 2})
	if len(skills.Skills) != 2 {
		t.Errorf("skill fallback count = %d, want 2", len(skills.Skills))
	}
	all := fallbackResult(Request{Intent: IntentSkillFill, Prompt: "p", Count: 99})
	if len(all.Skills) != len(fallbackSkills) {
		t.Errorf("skill fallback overshoot: %d", len(all.Skills))
	}

	chat := fallbackResult(Request{Intent: IntentChat, Prompt: "p"})
	if chat.Text == "" {
		t.Error("chat fallback empty")
	}
}

func TestParseResult(t *testing.T) {
	fenced := "```json\n" + validQuestJSON + "\n```"
	res, err := parseResult(IntentDailyQuests, fenced)
	if err != nil {
		t.Fatalf("parseResult: %v", err)
	}
	if len(res.Quests) != 2 || res.Quests[1].Target != 20 {
		t.Errorf("quests = %+v", res.Quests)
	}

	if _, err := parseResult(IntentDailyQuests, `[{"title": "X"}]`); err == nil {
		t.Error("incomplete quest must fail validation")
	}
	if _, err := parseResult(IntentDailyQuests, "not json"); err == nil {
		t.Error("non-JSON must fail")
	}

	skills, err := parseResult(IntentSkillFill, validSkillJSON)
	if err != nil {
		t.Fatalf("parseResult skills: %v", err)
	}
	if len(skills.Skills) != 1 || skills.Skills[0].TestTarget != 60 {
		t.Errorf("skills = %+v", skills.Skills)
	}

	weeklyRaw := `{"quests": [{"title": "W", "description": "d", "category": "STRATEGIC", "target": 1, "reward": "r"}],
  "skill": {"name": "S", "type": "COGNITIVE", "description": "d", "requirement": "Level 2+", "testTask": "t", "testTarget": 3, "testUnit": "u"}}`
	weekly, err := parseResult(IntentWeeklyBatch, weeklyRaw)
	if err != nil {
		t.Fatalf("parseResult weekly: %v", err)
	}
	if len(weekly.Quests) != 1 || weekly.Skill == nil || weekly.Skill.Name != "S" {
		t.Errorf("weekly = %+v", weekly)
	}

	chat, err := parseResult(IntentChat, "  STATUS CONFIRMED.  ")
	if err != nil {
		t.Fatalf("parseResult chat: %v", err)
	}
	if chat.Text != "STATUS CONFIRMED." {
		t.Errorf("chat text = %q", chat.Text)
	}
	if _, err := parseResult(IntentChat, "   "); err == nil {
		t.Error("blank chat response must fail")
	}
}
