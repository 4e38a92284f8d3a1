package moderation

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moderation-bot/model"
)

func TestDefaultRuleBook_Decide(t *testing.T) {
	rb := DefaultRuleBook()
	tests := []struct {
		category   model.Category
		occurrence int
		wantAction Action
		wantDur    time.Duration
	}{
		{model.CategoryFamilyInsult, 1, ActionWarn, 0},
		{model.CategoryFamilyInsult, 2, ActionTimeout, time.Hour},
		{model.CategoryFamilyInsult, 3, ActionWarn, 0},
		{model.CategoryReligiousInsult, 1, ActionTimeout, 12 * time.Hour},
		{model.CategorySpamFlood, 2, ActionTimeout, 15 * time.Minute},
		{model.CategorySpamFlood, 3, ActionTimeout, time.Hour},
		{model.CategoryRacismDiscrimination, 3, ActionTimeout, 24 * time.Hour},
		{model.CategoryProfaneLanguage, 2, ActionTimeout, 900 * time.Second},
		{model.CategoryProfaneLanguage, 3, ActionTimeout, 3 * time.Hour},
		{model.CategoryProfaneLanguage, 4, ActionWarn, 0},
		{model.CategoryImpersonation, 1, ActionTimeout, 2 * time.Hour},
		{model.CategoryIncitement, 2, ActionTimeout, 3 * time.Hour},
		{model.CategorySexualContent, 2, ActionTimeout, 4 * time.Hour},
		{model.CategoryMoralViolation, 2, ActionTimeout, 3 * time.Hour},
		{"unknown", 1, ActionWarn, 0},
	}
	for _, tt := range tests {
		got := rb.Decide(tt.category, tt.occurrence)
		assert.Equal(t, tt.wantAction, got.Action, "%s #%d", tt.category, tt.occurrence)
		assert.Equal(t, tt.wantDur, got.Duration, "%s #%d", tt.category, tt.occurrence)
		assert.NotEmpty(t, got.Description)
	}
	require.NoError(t, rb.Validate())
}

func TestDecide_Description(t *testing.T) {
	d := DefaultRuleBook().Decide(model.CategorySpamFlood, 2)
	assert.Equal(t, "15 minutes timeout", d.Description)
}

func TestLoadRuleBook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ladders.json")
	body := `{"spam-flood": [{"count": 1, "action": "timeout", "duration_seconds": 60}]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	rb, err := LoadRuleBook(path)
	require.NoError(t, err)

	assert.Equal(t, time.Minute, rb.Decide(model.CategorySpamFlood, 1).Duration)
	assert.Equal(t, ActionWarn, rb.Decide(model.CategorySpamFlood, 2).Action)
	// untouched categories keep the built-in ladder
	assert.Equal(t, 12*time.Hour, rb.Decide(model.CategoryReligiousInsult, 1).Duration)
}

func TestLoadRuleBook_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad json":         `{`,
		"zero count":       `{"spam-flood": [{"count": 0, "action": "warn"}]}`,
		"missing duration": `{"spam-flood": [{"count": 1, "action": "timeout"}]}`,
		"unknown action":   `{"spam-flood": [{"count": 1, "action": "ban"}]}`,
		"duplicate count":  `{"spam-flood": [{"count": 1, "action": "warn"}, {"count": 1, "action": "warn"}]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ladders.json")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			_, err := LoadRuleBook(path)
			assert.Error(t, err)
		})
	}

	_, err := LoadRuleBook(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestAlreadyJailedError(t *testing.T) {
	err := &AlreadyJailedError{Remaining: 3700 * time.Second}
	assert.Equal(t, "member is already jailed, 01:01:40 remaining", err.Error())
}
