package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"wheelsup-backend-go/internal/cache"
)

func TestVisitorCounter_CountsEachVisitorOnce(t *testing.T) {
	ctx := context.Background()
	repo := &fakeAnalyticsRepo{count: 41}
	counter := NewVisitorCounter(repo, cache.NewMemoryCache(), nil)

	assert.Equal(t, int64(42), counter.RecordVisit(ctx, "v1"))
	assert.Equal(t, int64(42), counter.RecordVisit(ctx, "v1"))
	assert.Equal(t, int64(43), counter.RecordVisit(ctx, "v2"))
	assert.Equal(t, int64(43), counter.RecordVisit(ctx, ""))
}

func TestVisitorCounter_Fallback(t *testing.T) {
	ctx := context.Background()

	repo := &fakeAnalyticsRepo{incErr: errors.New("unavailable")}
	flags := cache.NewMemoryCache()
	counter := NewVisitorCounter(repo, flags, nil)
	assert.Equal(t, FallbackVisitorCount, counter.RecordVisit(ctx, "v1"))

	// The failed visit is retried next time.
	repo.incErr = nil
	assert.Equal(t, int64(1), counter.RecordVisit(ctx, "v1"))

	repo.readErr = errors.New("unavailable")
	assert.Equal(t, FallbackVisitorCount, counter.RecordVisit(ctx, "v1"))
}
