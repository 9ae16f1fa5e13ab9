package repository

import (
	"go-retail-erp/internal/model"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(comment *model.OrderComment) error
	FindByOrder(orderID string) ([]model.OrderComment, error)
}

type commentRepo struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) CommentRepository {
	return &commentRepo{db}
}

func (r *commentRepo) Create(comment *model.OrderComment) error {
	return r.db.Create(comment).Error
}

func (r *commentRepo) FindByOrder(orderID string) ([]model.OrderComment, error) {
	var comments []model.OrderComment
	err := r.db.Where("order_id = ?", orderID).Order("created_at ASC").Find(&comments).Error
	return comments, err
}
