package provider

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/quest_batch.json
var questBatchSchema string

//go:embed schemas/weekly_batch.json
var weeklyBatchSchema string

//go:embed schemas/skill_batch.json
var skillBatchSchema string

var (
	questBatch  = jsonschema.MustCompileString("quest_batch.json", questBatchSchema)
	weeklyBatch = jsonschema.MustCompileString("weekly_batch.json", weeklyBatchSchema)
	skillBatch  = jsonschema.MustCompileString("skill_batch.json", skillBatchSchema)
)

// stripFences removes the markdown code fences models like to wrap
// structured output in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// parseResult validates raw provider output against the schema for the
// request's intent and decodes it. Any mismatch is an error; the
// caller treats it as a transient fault, never as a partial result.
func parseResult(intent Intent, raw string) (*Result, error) {
	if intent == IntentChat {
		text := strings.TrimSpace(raw)
		if text == "" {
			return nil, fmt.Errorf("empty chat response")
		}
		return &Result{Text: text, Source: SourceProvider}, nil
	}

	clean := stripFences(raw)

	var doc any
	if err := json.Unmarshal([]byte(clean), &doc); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	var schema *jsonschema.Schema
	switch intent {
	case IntentDailyQuests:
		schema = questBatch
	case IntentWeeklyBatch:
		schema = weeklyBatch
	case IntentSkillFill:
		schema = skillBatch
	default:
		return nil, fmt.Errorf("no schema for intent %q", intent)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("response does not match %s schema: %w", intent, err)
	}

	res := &Result{Source: SourceProvider}
	switch intent {
	case IntentDailyQuests:
		if err := json.Unmarshal([]byte(clean), &res.Quests); err != nil {
			return nil, err
		}
	case IntentWeeklyBatch:
		var body struct {
			Quests []QuestDraft `json:"quests"`
			Skill  *SkillDraft  `json:"skill"`
		}
		if err := json.Unmarshal([]byte(clean), &body); err != nil {
			return nil, err
		}
		res.Quests = body.Quests
		res.Skill = body.Skill
	case IntentSkillFill:
		if err := json.Unmarshal([]byte(clean), &res.Skills); err != nil {
			return nil, err
		}
	}
	return res, nil
}
