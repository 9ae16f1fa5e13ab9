package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-retail-erp/internal/model"
	"go-retail-erp/internal/repository"
	"go-retail-erp/internal/ws"
	"go-retail-erp/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PlaceOrderLine struct {
	ProductID uuid.UUID        `json:"product_id" validate:"uuid_required"`
	Quantity  int              `json:"quantity" validate:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"` // nil = use the item's current price
}

type PlaceOrderRequest struct {
	CustomerName    string           `json:"customer_name" validate:"required"`
	CustomerPhone   string           `json:"customer_phone"`
	CustomerAddress string           `json:"customer_address"`
	District        string           `json:"district"`
	CustomerLink    string           `json:"customer_link"`
	RepID           *uuid.UUID       `json:"rep_id,omitempty"` // nil = acting user
	Items           []PlaceOrderLine `json:"items" validate:"required,min=1,dive"`
}

type StatusUpdateRequest struct {
	Status          model.OrderStatus `json:"status" validate:"required,oneof=PENDING SHIPPED DELIVERED PAID CANCELLED"`
	CancelledReason string            `json:"cancelled_reason"`
	PaymentMethod   string            `json:"payment_method"`
	DeliveryDriver  string            `json:"delivery_driver"`
}

type OrderService interface {
	PlaceOrder(req *PlaceOrderRequest, actor Actor) (*model.Order, error)
	UpdateStatus(orderID string, req *StatusUpdateRequest, actor Actor) (*model.Order, error)
	AddComment(orderID, text string, actor Actor) (*model.OrderComment, error)
	GetOrders(status model.OrderStatus, history bool) ([]model.Order, error)
	GetOrder(id string) (*model.Order, error)
}

type orderService struct {
	orderRepo     repository.OrderRepository
	itemRepo      repository.ItemRepository
	commentRepo   repository.CommentRepository
	ledger        LedgerService
	notifications NotificationService
	db            repository.TxRunner
	wsHub         *ws.Hub
	log           *logrus.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	itemRepo repository.ItemRepository,
	commentRepo repository.CommentRepository,
	ledger LedgerService,
	notifications NotificationService,
	db repository.TxRunner,
	hub *ws.Hub,
	log *logrus.Logger,
) OrderService {
	return &orderService{
		orderRepo:     orderRepo,
		itemRepo:      itemRepo,
		commentRepo:   commentRepo,
		ledger:        ledger,
		notifications: notifications,
		db:            db,
		wsHub:         hub,
		log:           log,
	}
}

func (s *orderService) PlaceOrder(req *PlaceOrderRequest, actor Actor) (*model.Order, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	repID := actor.ID
	if req.RepID != nil && *req.RepID != uuid.Nil {
		repID = *req.RepID
	}

	var order *model.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		lastID, err := s.orderRepo.FindLatestIDForUpdate(tx)
		if err != nil {
			return fmt.Errorf("read latest order id: %w", err)
		}
		orderID := model.NextOrderID(lastID)

		amount := decimal.Zero
		profit := decimal.Zero
		lines := make([]model.OrderLine, 0, len(req.Items))

		for _, reqLine := range req.Items {
			item, err := s.itemRepo.FindByIDForUpdate(tx, reqLine.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrItemNotFound
				}
				return fmt.Errorf("lock item %s: %w", reqLine.ProductID, err)
			}

			consumed, err := s.ledger.Consume(tx, item, reqLine.Quantity)
			if err != nil {
				return err
			}

			unitPrice := effectivePrice(item)
			if reqLine.UnitPrice != nil {
				unitPrice = *reqLine.UnitPrice
			}
			qty := decimal.NewFromInt(int64(reqLine.Quantity))
			lineAmount := unitPrice.Mul(qty)

			lines = append(lines, model.OrderLine{
				ProductID: item.ID,
				Name:      item.Name,
				Quantity:  reqLine.Quantity,
				UnitPrice: unitPrice,
				UnitCost:  consumed.UnitCostAverage,
			})
			amount = amount.Add(lineAmount)
			profit = profit.Add(lineAmount.Sub(consumed.TotalCost))

			// Cached stock is floored at zero even when the requested
			// quantity exceeds what we knew was on hand.
			newStock := item.Stock - reqLine.Quantity
			if newStock < 0 {
				newStock = 0
			}
			if err := s.itemRepo.UpdateStock(tx, item.ID, newStock, actor.ID.String()); err != nil {
				return fmt.Errorf("update stock for %s: %w", item.ID, err)
			}
		}

		now := time.Now()
		order = &model.Order{
			ID:               orderID,
			CustomerName:     req.CustomerName,
			CustomerPhone:    req.CustomerPhone,
			CustomerAddress:  req.CustomerAddress,
			District:         req.District,
			CustomerLink:     req.CustomerLink,
			Items:            lines,
			Amount:           amount,
			Profit:           profit,
			Status:           model.StatusPending,
			RepID:            repID,
			ProcessedBy:      actor.Username,
			LastStatusUpdate: &now,
		}
		return s.orderRepo.Create(tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.broadcast("order_created", actor, map[string]interface{}{
		"order_id": order.ID,
		"amount":   order.Amount,
		"status":   order.Status,
	})
	return order, nil
}

func (s *orderService) UpdateStatus(orderID string, req *StatusUpdateRequest, actor Actor) (*model.Order, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}

	var order *model.Order
	var noop bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.orderRepo.FindByIDForUpdate(tx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("lock order %s: %w", orderID, err)
		}

		// Cancelling an already-cancelled order is a no-op: inventory
		// must never be restored twice.
		if order.Status == model.StatusCancelled && req.Status == model.StatusCancelled {
			noop = true
			return nil
		}
		if order.Status.IsTerminal() {
			return ErrOrderTerminal
		}
		if !order.Status.CanTransition(req.Status) {
			return ErrInvalidTransition
		}

		if req.Status == model.StatusCancelled {
			if err := s.restoreInventory(tx, order, actor); err != nil {
				return err
			}
			order.CancelledReason = req.CancelledReason
		}

		order.Status = req.Status
		if req.PaymentMethod != "" {
			order.PaymentMethod = req.PaymentMethod
		}
		if req.DeliveryDriver != "" {
			order.DeliveryDriver = req.DeliveryDriver
		}
		now := time.Now()
		order.ProcessedBy = actor.Username
		order.LastStatusUpdate = &now

		return s.orderRepo.Update(tx, order)
	})
	if err != nil {
		return nil, err
	}
	if noop {
		return order, nil
	}

	if err := s.notifications.NotifyStatusChange(order, actor); err != nil {
		s.log.WithError(err).WithField("order_id", order.ID).Warn("status notification failed")
	}
	s.broadcast("order_status_updated", actor, map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})
	return order, nil
}

// restoreInventory is the compensating action for cancellation: every
// line's quantity goes back onto the item's stock and into the ledger
// at the cost recorded on the line.
func (s *orderService) restoreInventory(tx *gorm.DB, order *model.Order, actor Actor) error {
	for _, line := range order.Items {
		item, err := s.itemRepo.FindByIDForUpdate(tx, line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return fmt.Errorf("lock item %s: %w", line.ProductID, err)
		}
		if err := s.itemRepo.UpdateStock(tx, item.ID, item.Stock+line.Quantity, actor.ID.String()); err != nil {
			return fmt.Errorf("restore stock for %s: %w", item.ID, err)
		}
		if err := s.ledger.RestoreOnCancel(tx, item, line.Quantity, line.UnitCost); err != nil {
			return err
		}
	}
	return nil
}

func (s *orderService) AddComment(orderID, text string, actor Actor) (*model.OrderComment, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	comment := &model.OrderComment{
		OrderID:  order.ID,
		UserID:   actor.ID,
		Username: actor.Username,
		Text:     text,
	}
	if errs := validator.ValidateStruct(comment); len(errs) > 0 {
		first := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	if err := s.notifications.NotifyComment(order, comment, actor); err != nil {
		s.log.WithError(err).WithField("order_id", order.ID).Warn("comment notification failed")
	}
	return comment, nil
}

func (s *orderService) GetOrders(status model.OrderStatus, history bool) ([]model.Order, error) {
	return s.orderRepo.FindAll(status, history, 500)
}

func (s *orderService) GetOrder(id string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// effectivePrice honors an active discount price over the list price.
func effectivePrice(item *model.InventoryItem) decimal.Decimal {
	if item.DiscountPrice != nil && item.DiscountPrice.IsPositive() {
		return *item.DiscountPrice
	}
	return item.Price
}

func (s *orderService) broadcast(action string, actor Actor, data map[string]interface{}) {
	if s.wsHub == nil {
		return
	}
	go func() {
		payload := map[string]interface{}{
			"type":   "order_update",
			"action": action,
			"data":   data,
			"user": map[string]interface{}{
				"id":   actor.ID,
				"name": actor.Username,
			},
		}
		msg, _ := json.Marshal(payload)
		s.wsHub.Broadcast <- msg
	}()
}
