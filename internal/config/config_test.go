package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "portfolio.db", cfg.DatabasePath)
	assert.Equal(t, 8760*time.Hour, cfg.VisitorRetention)
	assert.True(t, cfg.TrackVisitors)
	assert.True(t, cfg.AllowAllOrigins())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("VISITOR_RETENTION", "720h")
	t.Setenv("TRACK_VISITORS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr())
	assert.False(t, cfg.Debug())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.False(t, cfg.AllowAllOrigins())
	assert.True(t, cfg.OriginAllowed("https://b.example"))
	assert.False(t, cfg.OriginAllowed("https://evil.example"))
	assert.Equal(t, 720*time.Hour, cfg.VisitorRetention)
	assert.False(t, cfg.TrackVisitors)
}

func TestLoadError(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}
