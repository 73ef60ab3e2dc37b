package handlers

import (
	"context"
	"io"
	"time"

	"github.com/labstack/echo/v4"

	"brotot_gym/internal/models"
	"brotot_gym/internal/services"
)

// MemberDirectory is the mutable member profile store.
type MemberDirectory interface {
	ListMembers(ctx context.Context) ([]models.Member, error)
	Append(ctx context.Context, member models.Member) (int, error)
	UpdateFields(ctx context.Context, memberID int, fields map[string]string) ([]string, error)
}

// TransactionLedger is the append-only transaction history.
type TransactionLedger interface {
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	Append(ctx context.Context, tx models.Transaction) error
}

// MediaStore hosts uploaded member photos.
type MediaStore interface {
	Upload(ctx context.Context, filename string, file io.Reader) (string, error)
}

// loadMembers reads the member set through the snapshot cache. A nil cache
// reads the directory straight through.
func loadMembers(ctx context.Context, cache *services.RedisCache, ttl time.Duration, directory MemberDirectory) ([]models.Member, error) {
	if cache == nil {
		return directory.ListMembers(ctx)
	}
	return services.GetOrSet(cache, ctx, services.CacheKeyMembers, ttl, func() ([]models.Member, error) {
		return directory.ListMembers(ctx)
	})
}

func loadTransactions(ctx context.Context, cache *services.RedisCache, ttl time.Duration, ledger TransactionLedger) ([]models.Transaction, error) {
	if cache == nil {
		return ledger.ListTransactions(ctx)
	}
	return services.GetOrSet(cache, ctx, services.CacheKeyTransactions, ttl, func() ([]models.Transaction, error) {
		return ledger.ListTransactions(ctx)
	})
}

// invalidate drops cached snapshots after a write path mutated the backing
// worksheet.
func invalidate(ctx context.Context, cache *services.RedisCache, keys ...string) {
	if cache == nil {
		return
	}
	for _, key := range keys {
		_ = cache.Delete(ctx, key)
	}
}

// Helper to safely get string from context
func getStringFromContext(c echo.Context, key string) string {
	val := c.Get(key)
	if val == nil {
		return ""
	}
	strVal, ok := val.(string)
	if !ok {
		return ""
	}
	return strVal
}
