package repository

import (
	"errors"
	"time"

	"go-retail-erp/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(tx *gorm.DB, order *model.Order) error
	// FindLatestIDForUpdate returns the most recently created order id,
	// locking it so concurrent placements cannot mint the same ORD-<n>.
	// Returns "" when no order exists yet.
	FindLatestIDForUpdate(tx *gorm.DB) (string, error)
	FindByID(id string) (*model.Order, error)
	FindByIDForUpdate(tx *gorm.DB, id string) (*model.Order, error)
	Update(tx *gorm.DB, order *model.Order) error
	FindAll(status model.OrderStatus, history bool, limit int) ([]model.Order, error)
	CountByStatus() (map[model.OrderStatus]int64, error)
	SalesSummary(startDate, endDate time.Time) (revenue, profit decimal.Decimal, err error)
	MonthlySales(months int) ([]MonthlySalesData, error)
}

// MonthlySalesData feeds the dashboard chart
type MonthlySalesData struct {
	Month  string          `json:"month"`
	Sales  decimal.Decimal `json:"sales"`
	Profit decimal.Decimal `json:"profit"`
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) Create(tx *gorm.DB, order *model.Order) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(order).Error
}

func (r *orderRepo) FindLatestIDForUpdate(tx *gorm.DB) (string, error) {
	var order model.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Order("created_at DESC").
		Select("id").
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return order.ID, nil
}

func (r *orderRepo) FindByID(id string) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Preload("Rep").First(&order, "id = ?", id).Error
	return &order, err
}

func (r *orderRepo) FindByIDForUpdate(tx *gorm.DB, id string) (*model.Order, error) {
	var order model.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", id).Error
	return &order, err
}

func (r *orderRepo) Update(tx *gorm.DB, order *model.Order) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Save(order).Error
}

// FindAll lists orders newest first. When history is set only terminal
// orders are returned, otherwise only open ones; an explicit status
// filter narrows either view further.
func (r *orderRepo) FindAll(status model.OrderStatus, history bool, limit int) ([]model.Order, error) {
	q := r.db.Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Order("created_at DESC")

	if history {
		q = q.Where("status IN ?", []model.OrderStatus{model.StatusPaid, model.StatusCancelled})
	} else {
		q = q.Where("status NOT IN ?", []model.OrderStatus{model.StatusPaid, model.StatusCancelled})
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var orders []model.Order
	err := q.Find(&orders).Error
	return orders, err
}

func (r *orderRepo) CountByStatus() (map[model.OrderStatus]int64, error) {
	type row struct {
		Status model.OrderStatus
		Count  int64
	}
	var rows []row
	err := r.db.Model(&model.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.OrderStatus]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.Count
	}
	return counts, nil
}

// SalesSummary sums revenue and profit of non-cancelled orders in range.
func (r *orderRepo) SalesSummary(startDate, endDate time.Time) (decimal.Decimal, decimal.Decimal, error) {
	type row struct {
		Revenue decimal.Decimal
		Profit  decimal.Decimal
	}
	var result row
	err := r.db.Model(&model.Order{}).
		Select("COALESCE(SUM(amount), 0) as revenue, COALESCE(SUM(profit), 0) as profit").
		Where("status <> ? AND created_at BETWEEN ? AND ?", model.StatusCancelled, startDate, endDate).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return result.Revenue, result.Profit, nil
}

func (r *orderRepo) MonthlySales(months int) ([]MonthlySalesData, error) {
	since := time.Now().AddDate(0, -months, 0)

	rows, err := r.db.Model(&model.Order{}).
		Select(`
			TO_CHAR(DATE_TRUNC('month', created_at), 'YYYY-MM') as month,
			COALESCE(SUM(amount), 0) as sales,
			COALESCE(SUM(profit), 0) as profit
		`).
		Where("status <> ? AND created_at >= ?", model.StatusCancelled, since).
		Group("DATE_TRUNC('month', created_at)").
		Order("month ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MonthlySalesData
	for rows.Next() {
		var data MonthlySalesData
		if err := rows.Scan(&data.Month, &data.Sales, &data.Profit); err != nil {
			return nil, err
		}
		results = append(results, data)
	}
	return results, nil
}
