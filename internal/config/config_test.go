package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every known key; empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for k := range defaults {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	c, err := load(viper.New(), false)
	require.NoError(t, err)
	assert.Equal(t, Default(), *c)
	assert.False(t, c.IsProduction())
	assert.Equal(t, []string{"http://localhost:3000"}, c.AllowedOrigins())
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "Production")
	t.Setenv("FOREST_TREES", "25")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("RETRAIN_ENABLED", "true")
	t.Setenv("RETRAIN_TIME", "04:15")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	c, err := load(viper.New(), false)
	require.NoError(t, err)
	assert.Equal(t, "9090", c.Port)
	assert.True(t, c.IsProduction())
	assert.Equal(t, 25, c.ForestTrees)
	assert.Equal(t, 90*time.Second, c.CacheTTL)
	assert.True(t, c.RetrainEnabled)
	assert.Equal(t, "04:15", c.RetrainTime)
	assert.Equal(t, "localhost:6379", c.RedisAddr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins())
}

func TestLoadSanitizes(t *testing.T) {
	clearEnv(t)
	t.Setenv("FOREST_TREES", "0")
	t.Setenv("TREND_WORKERS", "-2")
	t.Setenv("RATE_LIMIT_PER_MIN", "0")
	t.Setenv("RETRAIN_TIME", "25:99")
	t.Setenv("RETRAIN_RETRY_COUNT", "-1")

	c, err := load(viper.New(), false)
	require.NoError(t, err)
	d := Default()
	assert.Equal(t, d.ForestTrees, c.ForestTrees)
	assert.Equal(t, d.TrendWorkers, c.TrendWorkers)
	assert.Equal(t, d.RateLimitPerMin, c.RateLimitPerMin)
	assert.Equal(t, d.RetrainTime, c.RetrainTime)
	assert.Equal(t, d.RetrainRetryCount, c.RetrainRetryCount)
}
