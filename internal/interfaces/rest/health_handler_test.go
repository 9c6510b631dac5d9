package rest_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHome(t *testing.T) {
	f := newRestFixture(t, nil)

	code, resp := f.request(t, "GET", "/", nil, nil)

	assert.Equal(t, 200, code)
	assert.Equal(t, "alive", resp["status"])
	assert.Equal(t, "marketpulse", resp["service"])
	assert.Equal(t, "webhook", resp["mode"])
	assert.NotEmpty(t, resp["timestamp"])
}

func TestHealthHealthy(t *testing.T) {
	f := newRestFixture(t, nil)
	f.mock.ExpectPing()

	code, resp := f.request(t, "GET", "/health", nil, nil)

	assert.Equal(t, 200, code)
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "ok", resp["database"])
	assert.Equal(t, "inactive", resp["scheduler"])
	assert.Equal(t, float64(fixtureChatID), resp["chat_id"])

	nextRuns, ok := resp["next_runs"].(map[string]interface{})
	assert.True(t, ok)
	assert.Contains(t, nextRuns, "heartbeat")
	assert.Contains(t, nextRuns, "digest")
}

func TestHealthDegradedWhenDatabaseDown(t *testing.T) {
	f := newRestFixture(t, nil)
	f.mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	code, resp := f.request(t, "GET", "/health", nil, nil)

	assert.Equal(t, 503, code)
	assert.Equal(t, "degraded", resp["status"])
	assert.Contains(t, resp["database"], "connection refused")
}
