package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/elskow/reportdesk/internal/config"
)

func newTestLogger(t *testing.T) *zap.Logger {
	logger, err := zap.NewDevelopment()
	assert.NoError(t, err)
	return logger
}

func newTestConfig() *config.AuthConfig {
	return &config.AuthConfig{
		MinPasswordLength: 6,
		SessionCookieTTL:  7 * 24 * time.Hour,
		ClaimCookieTTL:    365 * 24 * time.Hour,
		DeviceCookieTTL:   365 * 24 * time.Hour,
	}
}

func newTestService(t *testing.T) (*Service, *MemoryStore) {
	store := NewMemoryStore()
	return NewService(newTestConfig(), newTestLogger(t), store, store, store), store
}
