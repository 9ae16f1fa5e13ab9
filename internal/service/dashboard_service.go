package service

import (
	"context"
	"encoding/json"
	"time"

	"go-retail-erp/internal/cache"
	"go-retail-erp/internal/model"
	"go-retail-erp/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	statsCacheKey = "dashboard:stats"
	statsCacheTTL = 30 * time.Second
)

// DashboardStats is the overview block of the dashboard.
type DashboardStats struct {
	TotalItems     int64                       `json:"total_items"`
	LowStockCount  int64                       `json:"low_stock_count"`
	TotalValuation decimal.Decimal             `json:"total_valuation"`
	OrdersByStatus map[model.OrderStatus]int64 `json:"orders_by_status"`
}

// SalesSummary aggregates revenue/profit of non-cancelled orders.
type SalesSummary struct {
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	Revenue   decimal.Decimal `json:"revenue"`
	Profit    decimal.Decimal `json:"profit"`
}

type DashboardService interface {
	GetStats(ctx context.Context) (*DashboardStats, error)
	GetSalesSummary(startDate, endDate time.Time) (*SalesSummary, error)
	GetMonthlySales(months int) ([]repository.MonthlySalesData, error)
}

type dashboardService struct {
	itemRepo  repository.ItemRepository
	orderRepo repository.OrderRepository
	cache     cache.StatsCache
	log       *logrus.Logger
}

func NewDashboardService(itemRepo repository.ItemRepository, orderRepo repository.OrderRepository, statsCache cache.StatsCache, log *logrus.Logger) DashboardService {
	return &dashboardService{
		itemRepo:  itemRepo,
		orderRepo: orderRepo,
		cache:     statsCache,
		log:       log,
	}
}

func (s *dashboardService) GetStats(ctx context.Context) (*DashboardStats, error) {
	if cached, ok, err := s.cache.Get(ctx, statsCacheKey); err != nil {
		s.log.WithError(err).Warn("stats cache read failed")
	} else if ok {
		var stats DashboardStats
		if err := json.Unmarshal(cached, &stats); err == nil {
			return &stats, nil
		}
	}

	stats := &DashboardStats{}
	var err error
	if stats.TotalItems, err = s.itemRepo.CountAll(); err != nil {
		return nil, err
	}
	if stats.LowStockCount, err = s.itemRepo.CountLowStock(); err != nil {
		return nil, err
	}
	if stats.TotalValuation, err = s.itemRepo.TotalValuation(); err != nil {
		return nil, err
	}
	if stats.OrdersByStatus, err = s.orderRepo.CountByStatus(); err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, statsCacheKey, payload, statsCacheTTL); err != nil {
			s.log.WithError(err).Warn("stats cache write failed")
		}
	}
	return stats, nil
}

func (s *dashboardService) GetSalesSummary(startDate, endDate time.Time) (*SalesSummary, error) {
	revenue, profit, err := s.orderRepo.SalesSummary(startDate, endDate)
	if err != nil {
		return nil, err
	}
	return &SalesSummary{
		StartDate: startDate,
		EndDate:   endDate,
		Revenue:   revenue,
		Profit:    profit,
	}, nil
}

func (s *dashboardService) GetMonthlySales(months int) ([]repository.MonthlySalesData, error) {
	if months <= 0 {
		months = 6
	}
	return s.orderRepo.MonthlySales(months)
}
