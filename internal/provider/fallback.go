package provider

// The deterministic fallback keeps the system usable with no working
// credential. Content mirrors the provider shapes exactly; only the
// flavor is canned. Fallback never fails.

var fallbackDailies = []QuestDraft{
	{
		Title:             "MORNING FOCUS ROUTINE",
		Description:       "Wake up and run a 20 minute routine without checking your phone.",
		Category:          "CONTROL",
		Target:            1,
		Reward:            "+5 EXP on morning missions",
		MeasurableAction:  "Avoid screens for 20min after waking",
		TimeCommitment:    "20 minutes",
		Benefit:           "Stabilizes cortisol, sharpens daily focus",
		PatternCorrection: "Breaks the morning notification habit",
		Competence:        "Digital self-control",
		DeadlineDays:      1,
	},
	{
		Title:             "VITALITY DRILL",
		Description:       "Complete 3 full-body stretching sets.",
		Category:          "PHYSICAL",
		Target:            3,
		Reward:            "+2 VITALITY, temporary",
		MeasurableAction:  "Stretching sets completed",
		TimeCommitment:    "15 minutes",
		Benefit:           "Raises blood flow, reduces stiffness",
		PatternCorrection: "Counters chronic sitting",
		Competence:        "Body awareness",
		DeadlineDays:      1,
	},
}

var fallbackWeekly = QuestDraft{
	Title:             "DIGITAL ENVIRONMENT OVERHAUL",
	Description:       "1. Create an organized folder tree for your documents. 2. Clear the desktop. 3. Set up the shortcuts you actually use.",
	Category:          "COGNITIVE",
	Target:            1,
	Reward:            "+20% efficiency on digital tasks",
	MeasurableAction:  "Digital environment organized",
	TimeCommitment:    "2-3 hours",
	Benefit:           "Cuts visual and cognitive load",
	PatternCorrection: "Counters chronic digital clutter",
	Competence:        "Systems management",
	DeadlineDays:      7,
}

var fallbackEmergency = []QuestDraft{
	{
		Title:             "PROTOCOL RECOVERY",
		Description:       "Pick the smallest failed objective and finish it today, no substitutions.",
		Category:          "CONTROL",
		Target:            1,
		Reward:            "Failure counter purge",
		MeasurableAction:  "One failed objective closed",
		TimeCommitment:    "1 hour",
		Benefit:           "Restores momentum after a failure streak",
		PatternCorrection: "Interrupts avoidance spirals",
		Competence:        "Recovery discipline",
		DeadlineDays:      2,
	},
	{
		Title:             "SYSTEM AUDIT",
		Description:       "Write down why each recent mission expired and one fix per cause.",
		Category:          "COGNITIVE",
		Target:            1,
		Reward:            "Clarity on failure causes",
		MeasurableAction:  "Audit note written",
		TimeCommitment:    "30 minutes",
		Benefit:           "Converts failure into usable signal",
		PatternCorrection: "Stops repeat scheduling mistakes",
		Competence:        "Self-analysis",
		DeadlineDays:      2,
	},
}

var fallbackSkills = []SkillDraft{
	{
		Name:        "CONCENTRATED FOCUS",
		Type:        "COGNITIVE",
		Description: "Sustained attention on a single task.",
		Requirement: "Level 1+",
		Bonus:       "+10% EXP on cognitive missions",
		TestTask:    "Work or study with zero interruptions",
		TestTarget:  25,
		TestUnit:    "minutes",
	},
	{
		Name:        "MORNING DISCIPLINE",
		Type:        "MOTOR",
		Description: "Consistent execution of a morning routine.",
		Requirement: "Level 2+",
		Bonus:       "+5 WILL",
		TestTask:    "Wake up at the planned time",
		TestTarget:  5,
		TestUnit:    "consecutive days",
	},
	{
		Name:        "ACTIVE RECALL",
		Type:        "COGNITIVE",
		Description: "Retrieval practice instead of passive review.",
		Requirement: "Level 2+",
		Bonus:       "+10% retention on study missions",
		TestTask:    "Summarize a chapter from memory",
		TestTarget:  3,
		TestUnit:    "chapters",
	},
	{
		Name:        "BOX BREATHING",
		Type:        "MOTOR",
		Description: "Four-count breathing under stress.",
		Requirement: "Level 1+",
		Bonus:       "-10% fatigue gain",
		TestTask:    "Run a full box-breathing cycle when stressed",
		TestTarget:  10,
		TestUnit:    "sessions",
	},
	{
		Name:        "WEEKLY REVIEW",
		Type:        "STRATEGIC",
		Description: "Scheduled review of the week's objectives.",
		Requirement: "Level 3+",
		Bonus:       "+1 SENSE",
		TestTask:    "Close a written weekly review",
		TestTarget:  4,
		TestUnit:    "weeks",
	},
}

const fallbackChatLine = "SYSTEM OPERATIONAL. AWAITING PROTOCOL COMMANDS."

// FallbackSkillFill returns up to count canned skill drafts from the
// basic set. It backs the skill-fill fallback and the manual-mode pool
// top-up, which never calls the provider.
func FallbackSkillFill(count int) []SkillDraft {
	if count <= 0 || count > len(fallbackSkills) {
		count = len(fallbackSkills)
	}
	return append([]SkillDraft(nil), fallbackSkills[:count]...)
}

// fallbackResult returns the canned, intent-matched result. The intent
// tag plays the role the original's prompt keyword matching did.
func fallbackResult(req Request) *Result {
	res := &Result{Source: SourceFallback}
	switch req.Intent {
	case IntentDailyQuests:
		if req.emergency {
			res.Quests = append(res.Quests, fallbackEmergency...)
		} else {
			res.Quests = append(res.Quests, fallbackDailies...)
		}
	case IntentWeeklyBatch:
		res.Quests = []QuestDraft{fallbackWeekly}
		skill := fallbackSkills[0]
		res.Skill = &skill
	case IntentSkillFill:
		res.Skills = FallbackSkillFill(req.Count)
	case IntentChat:
		res.Text = fallbackChatLine
	}
	return res
}
