package moderation

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"moderation-bot/model"
	"moderation-bot/utils"
)

// Action is the outcome of a moderation decision.
type Action string

const (
	ActionWarn    Action = "warn"
	ActionTimeout Action = "timeout"
	ActionError   Action = "error"
	ActionKick    Action = "kick"
	ActionBan     Action = "ban"
	ActionJail    Action = "jail"
	ActionRelease Action = "release"
	ActionUnwarn  Action = "unwarn"
)

// Decision is what a ladder prescribes for a given occurrence.
type Decision struct {
	Action      Action
	Duration    time.Duration
	Description string
}

// Rung is one step of a category ladder, matched by exact occurrence count.
type Rung struct {
	Count    int    `json:"count"`
	Action   Action `json:"action"`
	Duration int    `json:"duration_seconds,omitempty"`
}

func (r Rung) decision() Decision {
	if r.Action == ActionTimeout {
		d := time.Duration(r.Duration) * time.Second
		return Decision{Action: ActionTimeout, Duration: d, Description: utils.FormatDuration(d) + " timeout"}
	}
	return warnDecision
}

var warnDecision = Decision{Action: ActionWarn, Description: "Warning"}

// RuleBook maps each category to its escalation ladder.
type RuleBook map[model.Category][]Rung

// DefaultRuleBook returns the built-in ladders.
func DefaultRuleBook() RuleBook {
	warn := func(n int) Rung { return Rung{Count: n, Action: ActionWarn} }
	timeout := func(n, seconds int) Rung { return Rung{Count: n, Action: ActionTimeout, Duration: seconds} }

	return RuleBook{
		model.CategoryFamilyInsult:         {warn(1), timeout(2, 3600)},
		model.CategoryReligiousInsult:      {timeout(1, 43200)},
		model.CategorySpamFlood:            {warn(1), timeout(2, 900), timeout(3, 3600)},
		model.CategoryRacismDiscrimination: {warn(1), timeout(2, 7200), timeout(3, 86400)},
		model.CategoryProfaneLanguage:      {warn(1), timeout(2, 900), timeout(3, 10800)},
		model.CategoryImpersonation:        {timeout(1, 7200)},
		model.CategoryIncitement:           {warn(1), timeout(2, 10800)},
		model.CategorySexualContent:        {warn(1), timeout(2, 14400)},
		model.CategoryMoralViolation:       {warn(1), timeout(2, 10800)},
	}
}

// Decide returns the decision for the occurrence-th active warning in category.
// Only an exact count match selects a rung; anything else is a plain warning.
func (rb RuleBook) Decide(category model.Category, occurrence int) Decision {
	for _, rung := range rb[category] {
		if rung.Count == occurrence {
			return rung.decision()
		}
	}
	return warnDecision
}

// Validate checks every rung for a known action, a positive count and, for
// timeouts, a positive duration.
func (rb RuleBook) Validate() error {
	categories := make([]string, 0, len(rb))
	for c := range rb {
		categories = append(categories, string(c))
	}
	sort.Strings(categories)

	for _, c := range categories {
		seen := make(map[int]bool)
		for _, rung := range rb[model.Category(c)] {
			if rung.Count < 1 {
				return fmt.Errorf("category %s: count must be at least 1, got %d", c, rung.Count)
			}
			if seen[rung.Count] {
				return fmt.Errorf("category %s: duplicate count %d", c, rung.Count)
			}
			seen[rung.Count] = true
			switch rung.Action {
			case ActionWarn:
			case ActionTimeout:
				if rung.Duration <= 0 {
					return fmt.Errorf("category %s: timeout at count %d needs a positive duration", c, rung.Count)
				}
			default:
				return fmt.Errorf("category %s: unsupported action %q", c, rung.Action)
			}
		}
	}
	return nil
}

// LoadRuleBook reads ladders from a JSON file shaped like {"category": [{"count": 1, "action": "warn"}]}.
// Categories missing from the file keep their built-in ladder.
func LoadRuleBook(path string) (RuleBook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ladders file: %w", err)
	}
	var overrides RuleBook
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to decode ladders file: %w", err)
	}
	if err := overrides.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ladders file: %w", err)
	}

	book := DefaultRuleBook()
	for category, ladder := range overrides {
		book[category] = ladder
	}
	return book, nil
}
