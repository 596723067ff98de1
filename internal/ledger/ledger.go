// Package ledger implements the progression rules that mutate a
// player's numeric state: reward crediting with cascading level-ups,
// attribute point allocation, and failure escalation.
package ledger

import (
	"errors"
	"fmt"

	"github.com/solwen/arise/internal/models"
)

const (
	// MaxExpGrowth is applied to the exp threshold on each level-up.
	MaxExpGrowth = 1.6

	// PointsPerLevel is the unallocated point grant per level-up.
	PointsPerLevel = 3

	// DefaultEscalationThreshold is the failed-mission count above
	// which an emergency batch is owed.
	DefaultEscalationThreshold = 3
)

// ErrInsufficientPoints is returned by AllocatePoint when the
// unallocated pool is empty. No state is mutated.
var ErrInsufficientPoints = errors.New("no unallocated points")

// Attribute names one of the six trainable scores.
type Attribute string

const (
	Strength     Attribute = "strength"
	Agility      Attribute = "agility"
	Vitality     Attribute = "vitality"
	Sense        Attribute = "sense"
	Intelligence Attribute = "intelligence"
	Will         Attribute = "will"
)

// Attributes lists all allocatable attributes in display order.
var Attributes = []Attribute{Strength, Agility, Vitality, Sense, Intelligence, Will}

func (a Attribute) IsValid() bool {
	switch a {
	case Strength, Agility, Vitality, Sense, Intelligence, Will:
		return true
	default:
		return false
	}
}

// CreditReward adds gold unconditionally and exp with cascading
// level-ups: while exp meets the threshold, the threshold is consumed,
// the level rises, max exp grows and bonus points are granted. It
// returns the number of level-ups so callers can react.
func CreditReward(l *models.Ledger, gold, exp int) int {
	l.Gold += gold
	l.Exp += exp

	levelUps := 0
	for l.Exp >= l.MaxExp {
		l.Exp -= l.MaxExp
		l.Level++
		l.MaxExp = int(float64(l.MaxExp) * MaxExpGrowth)
		l.UnallocatedPoints += PointsPerLevel
		levelUps++
	}
	return levelUps
}

// AllocatePoint spends one unallocated point on the given attribute.
func AllocatePoint(l *models.Ledger, attr Attribute) error {
	if !attr.IsValid() {
		return fmt.Errorf("unknown attribute %q", attr)
	}
	if l.UnallocatedPoints <= 0 {
		return ErrInsufficientPoints
	}

	switch attr {
	case Strength:
		l.Strength++
	case Agility:
		l.Agility++
	case Vitality:
		l.Vitality++
	case Sense:
		l.Sense++
	case Intelligence:
		l.Intelligence++
	case Will:
		l.Will++
	}
	l.UnallocatedPoints--
	return nil
}

// RecordFailure adds n expired missions to the failure counter and
// reports whether escalation is now owed. The counter is reset only by
// ResetFailures, after the escalation batch has been applied.
func RecordFailure(l *models.Ledger, n, threshold int) bool {
	if n > 0 {
		l.FailedMissions += n
	}
	return l.FailedMissions > threshold
}

// ResetFailures clears the failure counter once an emergency batch has
// landed.
func ResetFailures(l *models.Ledger) {
	l.FailedMissions = 0
}

// Rank maps a level to the hunter-rank letter shown in the HUD.
func Rank(level int) string {
	switch {
	case level >= 95:
		return "S"
	case level >= 80:
		return "A"
	case level >= 60:
		return "B"
	case level >= 35:
		return "C"
	case level >= 15:
		return "D"
	default:
		return "E"
	}
}

// JobTitle maps a level to the player's current title.
func JobTitle(level int) string {
	switch {
	case level >= 50:
		return "Monarch of Order"
	case level >= 30:
		return "Elite Optimizer"
	case level >= 15:
		return "Awakened of the Flow"
	case level >= 5:
		return "Bound Unit"
	default:
		return "Human Under Evaluation"
	}
}
