package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go-retail-erp/internal/model"
	"go-retail-erp/internal/repository"
	"go-retail-erp/internal/ws"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type NotificationService interface {
	// NotifyComment derives notifications from a freshly added comment:
	// one for the order's rep (unless they wrote it) and one per @mention.
	NotifyComment(order *model.Order, comment *model.OrderComment, actor Actor) error
	// NotifyStatusChange informs the order's rep when someone else moves
	// the order's status.
	NotifyStatusChange(order *model.Order, actor Actor) error
	ListForUser(userID uuid.UUID) ([]model.Notification, error)
	MarkRead(id, userID uuid.UUID) error
	MarkAllRead(userID uuid.UUID) error
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	wsHub            *ws.Hub
	log              *logrus.Logger
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	hub *ws.Hub,
	log *logrus.Logger,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		wsHub:            hub,
		log:              log,
	}
}

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// resolveMention finds the first user whose display name or login name
// contains the token, case-insensitively. Matching is best-effort and
// non-unique; ambiguous tokens resolve to the first match in list order.
func resolveMention(token string, users []model.User) *model.User {
	token = strings.ToLower(token)
	for i := range users {
		if strings.Contains(strings.ToLower(users[i].Username), token) ||
			strings.Contains(strings.ToLower(users[i].LoginName), token) {
			return &users[i]
		}
	}
	return nil
}

// deriveCommentNotifications is the pure derivation: the rep is notified
// first, then each mention token, skipping the commenter and anyone
// already notified.
func deriveCommentNotifications(order *model.Order, commenter Actor, text string, users []model.User) []model.Notification {
	orderID := order.ID
	var out []model.Notification
	notified := map[uuid.UUID]bool{commenter.ID: true}

	if order.RepID != uuid.Nil && order.RepID != commenter.ID {
		out = append(out, model.Notification{
			UserID:  order.RepID,
			Title:   "New comment",
			Message: fmt.Sprintf("%s commented on your order #%s", commenter.Username, orderID),
			Type:    model.NotifOrder,
			OrderID: &orderID,
		})
		notified[order.RepID] = true
	}

	for _, m := range mentionPattern.FindAllStringSubmatch(text, -1) {
		user := resolveMention(m[1], users)
		if user == nil || notified[user.ID] {
			continue
		}
		out = append(out, model.Notification{
			UserID:  user.ID,
			Title:   "You were mentioned",
			Message: fmt.Sprintf("%s mentioned you on order #%s", commenter.Username, orderID),
			Type:    model.NotifMention,
			OrderID: &orderID,
		})
		notified[user.ID] = true
	}
	return out
}

func (s *notificationService) NotifyComment(order *model.Order, comment *model.OrderComment, actor Actor) error {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return fmt.Errorf("load users for mention resolution: %w", err)
	}

	notifications := deriveCommentNotifications(order, actor, comment.Text, users)
	return s.deliver(notifications)
}

func (s *notificationService) NotifyStatusChange(order *model.Order, actor Actor) error {
	if order.RepID == uuid.Nil || order.RepID == actor.ID {
		return nil
	}
	orderID := order.ID
	return s.deliver([]model.Notification{{
		UserID:  order.RepID,
		Title:   "Order status updated",
		Message: fmt.Sprintf("%s moved order #%s to %s", actor.Username, orderID, order.Status),
		Type:    model.NotifOrder,
		OrderID: &orderID,
	}})
}

// deliver persists the notifications and pushes each to its recipient's
// live connections.
func (s *notificationService) deliver(notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	if err := s.notificationRepo.CreateBatch(notifications); err != nil {
		return fmt.Errorf("persist notifications: %w", err)
	}

	if s.wsHub == nil {
		return nil
	}
	for _, n := range notifications {
		payload, err := json.Marshal(map[string]interface{}{
			"type":         "notification",
			"notification": n,
		})
		if err != nil {
			s.log.WithError(err).Warn("marshal notification payload")
			continue
		}
		s.wsHub.SendToUser(n.UserID, payload)
	}
	return nil
}

func (s *notificationService) ListForUser(userID uuid.UUID) ([]model.Notification, error) {
	return s.notificationRepo.FindByUser(userID, 20)
}

func (s *notificationService) MarkRead(id, userID uuid.UUID) error {
	return s.notificationRepo.MarkRead(id, userID)
}

func (s *notificationService) MarkAllRead(userID uuid.UUID) error {
	return s.notificationRepo.MarkAllRead(userID)
}
