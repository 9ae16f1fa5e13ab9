package repository

import (
	"time"

	"go-retail-erp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RestockRepository interface {
	CreateLog(tx *gorm.DB, log *model.RestockLog) error
	FindLogs(limit int) ([]model.RestockLog, error)
	FindLogsByDateRange(startDate, endDate time.Time) ([]model.RestockLog, error)
	CreateTemplate(template *model.RestockTemplate) error
	FindTemplates() ([]model.RestockTemplate, error)
	DeleteTemplate(id uuid.UUID) error
}

type restockRepo struct {
	db *gorm.DB
}

func NewRestockRepo(db *gorm.DB) RestockRepository {
	return &restockRepo{db}
}

func (r *restockRepo) CreateLog(tx *gorm.DB, log *model.RestockLog) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(log).Error
}

func (r *restockRepo) FindLogs(limit int) ([]model.RestockLog, error) {
	var logs []model.RestockLog
	q := r.db.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&logs).Error
	return logs, err
}

func (r *restockRepo) FindLogsByDateRange(startDate, endDate time.Time) ([]model.RestockLog, error) {
	var logs []model.RestockLog
	err := r.db.Where("restock_date BETWEEN ? AND ?", startDate, endDate).
		Order("restock_date DESC").
		Find(&logs).Error
	return logs, err
}

func (r *restockRepo) CreateTemplate(template *model.RestockTemplate) error {
	return r.db.Create(template).Error
}

func (r *restockRepo) FindTemplates() ([]model.RestockTemplate, error) {
	var templates []model.RestockTemplate
	err := r.db.Order("created_at DESC").Find(&templates).Error
	return templates, err
}

func (r *restockRepo) DeleteTemplate(id uuid.UUID) error {
	return r.db.Delete(&model.RestockTemplate{}, "id = ?", id).Error
}
