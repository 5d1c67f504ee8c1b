package usecase

import (
	"context"
	"errors"
	"testing"

	"MarketDash/pkg/cache"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheck(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()

	cases := []struct {
		name   string
		db     error
		cache  cache.Service
		status string
		ok     bool
	}{
		{"all up", nil, mem, StatusHealthy, true},
		{"no cache configured", nil, nil, StatusHealthy, true},
		{"cache down", nil, brokenCache{}, StatusDegraded, true},
		{"database down", errors.New("refused"), mem, StatusUnhealthy, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rep := NewHealthUseCase(fakeHealth{err: tc.db}, tc.cache, nil).Check(context.Background())
			assert.Equal(t, tc.status, rep.Status)
			assert.Equal(t, tc.ok, rep.Healthy())
		})
	}
}
