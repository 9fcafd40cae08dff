package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, []string{"FINAL FANTASY", "Monster Hunter", "Steam"}, cfg.MonitorGames)
	assert.Equal(t, 15*time.Minute, cfg.WizardTTL)
	assert.Equal(t, "Asia/Tokyo", cfg.Location().String())
	assert.False(t, cfg.UsePostgres())
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("MONITOR_GAMES", "Steam,Battle.net")
	t.Setenv("WIZARD_TTL", "2m")
	t.Setenv("DATABASE_URL", "postgres://localhost/lucy")
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("RECRUIT_FORUM_ID", "1")
	t.Setenv("CHAT_CHANNEL_ID", "2")
	t.Setenv("TARGET_USER_ID", "3")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, []string{"Steam", "Battle.net"}, cfg.MonitorGames)
	assert.Equal(t, 2*time.Minute, cfg.WizardTTL)
	assert.True(t, cfg.UsePostgres())
	assert.True(t, cfg.LLMEnabled())
	assert.True(t, cfg.MonitorEnabled())
	assert.Equal(t, []string{"ROLE_ID (recruitment role mention)"}, cfg.Missing())
}

func TestParseRejectsBadValues(t *testing.T) {
	t.Run("timezone", func(t *testing.T) {
		t.Setenv("BOT_TIMEZONE", "Mars/Olympus")
		_, err := Parse()
		assert.Error(t, err)
	})
	t.Run("window", func(t *testing.T) {
		t.Setenv("MONITOR_START_HOUR", "18")
		t.Setenv("MONITOR_END_HOUR", "10")
		_, err := Parse()
		assert.Error(t, err)
	})
	t.Run("duration", func(t *testing.T) {
		t.Setenv("WIZARD_TTL", "soon")
		_, err := Parse()
		assert.Error(t, err)
	})
}
