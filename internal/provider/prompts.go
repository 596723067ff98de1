package provider

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"

	"github.com/solwen/arise/internal/models"
)

// systemPersona frames every provider exchange. The Architect treats
// the player as a "unit" under evaluation.
const systemPersona = "You are the System's Architect. Your speech is purely technical, " +
	"authoritative and focused on the unit's evolution. Address the user as a 'Unit' or 'Player'."

//go:embed prompts/daily_quests.txt
var dailyQuestsPrompt string

//go:embed prompts/weekly_batch.txt
var weeklyBatchPrompt string

//go:embed prompts/emergency_quests.txt
var emergencyQuestsPrompt string

//go:embed prompts/skill_fill.txt
var skillFillPrompt string

//go:embed prompts/chat.txt
var chatPrompt string

var (
	dailyTmpl     = template.Must(template.New("daily").Parse(dailyQuestsPrompt))
	weeklyTmpl    = template.Must(template.New("weekly").Parse(weeklyBatchPrompt))
	emergencyTmpl = template.Must(template.New("emergency").Parse(emergencyQuestsPrompt))
	skillTmpl     = template.Must(template.New("skill").Parse(skillFillPrompt))
	chatTmpl      = template.Must(template.New("chat").Parse(chatPrompt))
)

func render(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	// Templates are embedded and parsed at init; execution over plain
	// structs cannot fail.
	if err := tmpl.Execute(&buf, data); err != nil {
		panic(err)
	}
	return buf.String()
}

func itemNames(items []models.Item) string {
	var owned []string
	for _, it := range items {
		if it.Owned {
			owned = append(owned, it.Name)
		}
	}
	if len(owned) == 0 {
		return "None"
	}
	return strings.Join(owned, ", ")
}

func unlockedSkillNames(skills []models.Skill) string {
	var names []string
	for _, s := range skills {
		if s.Unlocked {
			names = append(names, s.Name)
		}
	}
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, ", ")
}

func goalOrDefault(l *models.Ledger) string {
	if l.Goal != "" {
		return l.Goal
	}
	return "TOTAL EVOLUTION"
}

// NewDailyRequest builds the daily-quests prompt from the ledger and
// the owned item registry.
func NewDailyRequest(l *models.Ledger, items []models.Item) Request {
	prompt := render(dailyTmpl, struct {
		Age, Level  int
		Goal, Items string
	}{l.Age, l.Level, goalOrDefault(l), itemNames(items)})
	return Request{Intent: IntentDailyQuests, Prompt: prompt}
}

// NewWeeklyRequest builds the weekly-batch prompt.
func NewWeeklyRequest(l *models.Ledger, items []models.Item, skills []models.Skill) Request {
	prompt := render(weeklyTmpl, struct {
		Name                string
		Age, Level          int
		Goal, Items, Skills string
	}{l.PlayerName, l.Age, l.Level, goalOrDefault(l), itemNames(items), unlockedSkillNames(skills)})
	return Request{Intent: IntentWeeklyBatch, Prompt: prompt}
}

// NewEmergencyRequest builds a corrective daily-quests prompt issued
// by failure escalation.
func NewEmergencyRequest(l *models.Ledger) Request {
	prompt := render(emergencyTmpl, struct {
		Failed, Level int
		Goal          string
	}{l.FailedMissions, l.Level, goalOrDefault(l)})
	return Request{Intent: IntentDailyQuests, Prompt: prompt, emergency: true}
}

// NewSkillFillRequest asks for exactly needed new skills.
func NewSkillFillRequest(l *models.Ledger, needed int) Request {
	prompt := render(skillTmpl, struct {
		Needed, Level, Age int
		Goal               string
	}{needed, l.Level, l.Age, goalOrDefault(l)})
	return Request{Intent: IntentSkillFill, Prompt: prompt, Count: needed}
}

// ChatEntry is one prior exchange line for prompt context.
type ChatEntry struct {
	Role string // "architect" or "unit"
	Text string
}

// NewChatRequest builds the architect chat prompt with bounded
// history.
func NewChatRequest(l *models.Ledger, history []ChatEntry, message string) Request {
	const maxHistory = 12
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	var b strings.Builder
	for _, h := range history {
		role := "UNIT"
		if h.Role == "architect" {
			role = "ARCHITECT"
		}
		b.WriteString(role + ": " + h.Text + "\n")
	}
	prompt := render(chatTmpl, struct {
		Name                   string
		Level, Age             int
		Goal, History, Message string
	}{l.PlayerName, l.Level, l.Age, goalOrDefault(l), b.String(), message})
	return Request{Intent: IntentChat, Prompt: prompt}
}
