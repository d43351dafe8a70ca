package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "sheet")
	t.Setenv("GOOGLE_DRIVE_FOLDER_ID", "folder")
}

func TestParseUserIDs(t *testing.T) {
	assert.Equal(t, []int64{1, 42}, ParseUserIDs(" 1, x, ,42"))
	assert.Empty(t, ParseUserIDs(""))
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("ROOMS", "101, 102,,103 ")
	assert.Equal(t, []string{"101", "102", "103"}, getEnvList("ROOMS", nil))
	assert.Equal(t, []string{"a"}, getEnvList("UNSET_LIST_FOR_TEST", []string{"a"}))
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("AUTHORIZED_USERS", "7")
	t.Setenv("GEMINI_API_KEY", "g")
	t.Setenv("TIMEZONE", "UTC")

	c := Load()
	assert.Equal(t, "gemini", c.LLMEngine)
	assert.Equal(t, []int64{7}, c.AuthorizedUsers)
	assert.Len(t, c.Rooms, 10)
	assert.Equal(t, "Registros", c.WorksheetName)
	assert.Equal(t, 30*24*time.Hour, c.CacheMaxAge)
	assert.Equal(t, 2, c.ScoreThresh)
	assert.True(t, c.DrivePublicLinks)
	require.NoError(t, c.Validate())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("LLM_ENGINE", "OpenAI")
	t.Setenv("CACHE_MAX_AGE", "48h")
	t.Setenv("SCORE_THRESHOLD", "nope")
	t.Setenv("DRIVE_PUBLIC_LINKS", "false")

	c := Load()
	assert.Equal(t, "openai", c.LLMEngine)
	assert.Equal(t, 48*time.Hour, c.CacheMaxAge)
	assert.Equal(t, 2, c.ScoreThresh)
	assert.False(t, c.DrivePublicLinks)
}

func TestValidate(t *testing.T) {
	c := &Config{
		LLMEngine:     "openai",
		Timezone:      "UTC",
		Rooms:         []string{"1"},
		EmergencyIDLo: 7,
		EmergencyIDHi: 10,
	}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	assert.Contains(t, err.Error(), "AUTHORIZED_USERS")

	c.OpenAIAPIKey = "k"
	c.AuthorizedUsers = []int64{1}
	assert.NoError(t, c.Validate())

	c.EmergencyIDHi = 5
	assert.Error(t, c.Validate())

	c.EmergencyIDHi = 10
	c.LLMEngine = "yandex"
	assert.Error(t, c.ValidateExtraction())
}

func TestLoadExtractionSkipsBotSettings(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("OPENAI_API_KEY", "k")
	t.Setenv("LLM_ENGINE", "gpt")

	c := LoadExtraction()
	assert.Empty(t, c.TelegramBotToken)
	assert.NoError(t, c.ValidateExtraction())
}
