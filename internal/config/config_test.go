package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("GIN_MODE", "release") // skip .env lookup
	t.Setenv("FIREBASE_PROJECT_ID", "wheelsup-test")
	t.Setenv("PII_ENCRYPTION_KEY", "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY=")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "log", cfg.EventBroker)
	assert.Equal(t, "123456", cfg.PhoneVerificationCode)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.True(t, cfg.IsRelease())
	assert.False(t, cfg.MailEnabled())
}

func TestLoadConfig_RequiresProjectID(t *testing.T) {
	setRequired(t)
	t.Setenv("FIREBASE_PROJECT_ID", "")

	_, err := LoadConfig()
	assert.EqualError(t, err, "FIREBASE_PROJECT_ID is required")
}

func TestLoadConfig_BrokerValidation(t *testing.T) {
	setRequired(t)
	t.Setenv("EVENT_BROKER", "kafka")

	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokerList())
}

func TestClientOrigins(t *testing.T) {
	setRequired(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:9002"}, cfg.ClientOrigins())

	cfg.ClientURL = "https://wheelsup.app, http://localhost:9002"
	assert.Equal(t, []string{"https://wheelsup.app", "http://localhost:9002"}, cfg.ClientOrigins())
}

func TestLocation(t *testing.T) {
	setRequired(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())

	t.Setenv("TIME_ZONE", "Mars/Olympus_Mons")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "TIME_ZONE")
}
