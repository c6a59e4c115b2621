package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ijwi/citizen-server/internal/apperr"
	"github.com/ijwi/citizen-server/internal/models"
	"github.com/ijwi/citizen-server/internal/notifier"
	"github.com/ijwi/citizen-server/internal/store"
)

// MessageStore is the storage the message service needs.
type MessageStore interface {
	CreateMessage(ctx context.Context, m *models.Message, events ...models.Event) error
	GetMessage(ctx context.Context, id uuid.UUID) (*models.Message, error)
	ListConversation(ctx context.Context, a, b uuid.UUID) ([]models.Message, error)
	MarkMessageRead(ctx context.Context, id uuid.UUID, readAt time.Time) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// MessageService handles direct messages between two users.
type MessageService struct {
	store  MessageStore
	logger *zap.SugaredLogger
}

// NewMessageService creates a new message service
func NewMessageService(st MessageStore, logger *zap.SugaredLogger) *MessageService {
	return &MessageService{store: st, logger: logger}
}

// Send delivers a message to the receiver's user room.
func (s *MessageService) Send(ctx context.Context, sender *models.User, req *models.MessageSubmission) (*models.Message, error) {
	if req.ReceiverID == sender.ID {
		return nil, apperr.Validation("cannot message yourself")
	}
	if _, err := s.store.GetUserByID(ctx, req.ReceiverID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("receiver not found")
		}
		return nil, err
	}

	message := &models.Message{
		ID:         uuid.New(),
		SenderID:   sender.ID,
		ReceiverID: req.ReceiverID,
		Body:       req.Message,
		Status:     models.MessageSent,
		CreatedAt:  time.Now(),
	}

	event, err := notifier.NewEvent(notifier.UserRoom(req.ReceiverID), notifier.EventNewMessage, message)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateMessage(ctx, message, event); err != nil {
		return nil, err
	}
	return message, nil
}

// Conversation returns all messages between the caller and another user.
func (s *MessageService) Conversation(ctx context.Context, actor *models.User, otherID uuid.UUID) ([]models.Message, error) {
	return s.store.ListConversation(ctx, actor.ID, otherID)
}

// MarkRead marks a message read; only its receiver may.
func (s *MessageService) MarkRead(ctx context.Context, actor *models.User, messageID uuid.UUID) (*models.Message, error) {
	message, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("message not found")
		}
		return nil, err
	}
	if message.ReceiverID != actor.ID {
		return nil, apperr.Authz("only the receiver can mark a message read")
	}

	now := time.Now()
	if err := s.store.MarkMessageRead(ctx, messageID, now); err != nil {
		return nil, err
	}
	message.Status = models.MessageRead
	message.ReadAt = &now
	return message, nil
}
