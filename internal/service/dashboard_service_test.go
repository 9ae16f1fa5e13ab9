package service

import (
	"context"
	"testing"
	"time"

	"go-retail-erp/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type memoryStatsCache struct {
	data map[string][]byte
	sets int
	hits int
}

func newMemoryStatsCache() *memoryStatsCache {
	return &memoryStatsCache{data: make(map[string][]byte)}
}

func (m *memoryStatsCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok := m.data[key]
	if ok {
		m.hits++
	}
	return value, ok, nil
}

func (m *memoryStatsCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	m.sets++
	return nil
}

func TestGetStatsComputesAndCaches(t *testing.T) {
	item := &model.InventoryItem{
		BaseModel:    model.BaseModel{ID: uuid.New()},
		SKU:          "SKU-1",
		Name:         "Widget",
		Stock:        2,
		ReorderPoint: 5,
		Price:        decimal.NewFromInt(100),
	}
	itemRepo := newFakeItemRepo(item)
	orderRepo := newFakeOrderRepo()
	orderRepo.Create(nil, &model.Order{ID: "ORD-1", Status: model.StatusPending})
	orderRepo.Create(nil, &model.Order{ID: "ORD-2", Status: model.StatusPaid})

	statsCache := newMemoryStatsCache()
	svc := NewDashboardService(itemRepo, orderRepo, statsCache, quietLogger())

	stats, err := svc.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalItems != 1 {
		t.Fatalf("expected 1 item, got %d", stats.TotalItems)
	}
	if stats.LowStockCount != 1 {
		t.Fatalf("expected 1 low-stock item, got %d", stats.LowStockCount)
	}
	if !stats.TotalValuation.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected valuation 200, got %s", stats.TotalValuation)
	}
	if stats.OrdersByStatus[model.StatusPending] != 1 || stats.OrdersByStatus[model.StatusPaid] != 1 {
		t.Fatalf("unexpected status counts: %+v", stats.OrdersByStatus)
	}
	if statsCache.sets != 1 {
		t.Fatalf("expected stats to be cached, sets=%d", statsCache.sets)
	}

	// Second call is served from cache
	again, err := svc.GetStats(context.Background())
	if err != nil {
		t.Fatalf("cached GetStats failed: %v", err)
	}
	if statsCache.hits != 1 {
		t.Fatalf("expected a cache hit, hits=%d", statsCache.hits)
	}
	if again.TotalItems != stats.TotalItems {
		t.Fatal("cached stats should match the computed stats")
	}
}

func TestGetSalesSummaryExcludesCancelled(t *testing.T) {
	orderRepo := newFakeOrderRepo()
	orderRepo.Create(nil, &model.Order{
		ID:     "ORD-1",
		Status: model.StatusPaid,
		Amount: decimal.NewFromInt(500),
		Profit: decimal.NewFromInt(120),
	})
	orderRepo.Create(nil, &model.Order{
		ID:     "ORD-2",
		Status: model.StatusCancelled,
		Amount: decimal.NewFromInt(900),
		Profit: decimal.NewFromInt(300),
	})

	svc := NewDashboardService(newFakeItemRepo(), orderRepo, newMemoryStatsCache(), quietLogger())

	summary, err := svc.GetSalesSummary(time.Now().AddDate(0, 0, -7), time.Now())
	if err != nil {
		t.Fatalf("GetSalesSummary failed: %v", err)
	}
	if !summary.Revenue.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("cancelled orders must not count toward revenue, got %s", summary.Revenue)
	}
	if !summary.Profit.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("cancelled orders must not count toward profit, got %s", summary.Profit)
	}
}
