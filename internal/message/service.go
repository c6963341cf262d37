package message

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrMissingContent = errors.New("receiver and message content are required")
	ErrMissingImage   = errors.New("receiver and image are required")
)

// Store is what the service needs from the repository.
type Store interface {
	Insert(ctx context.Context, senderID, receiverID int, content, imageURL, msgType string) (*Message, error)
	Conversation(ctx context.Context, userA, userB int) ([]*Message, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) SendText(ctx context.Context, senderID, receiverID int, content string) (*Message, error) {
	if receiverID <= 0 || strings.TrimSpace(content) == "" {
		return nil, ErrMissingContent
	}
	return s.store.Insert(ctx, senderID, receiverID, content, "", TypeText)
}

func (s *Service) SendImage(ctx context.Context, senderID, receiverID int, imageURL string) (*Message, error) {
	if receiverID <= 0 || imageURL == "" {
		return nil, ErrMissingImage
	}
	return s.store.Insert(ctx, senderID, receiverID, "", imageURL, TypeImage)
}

func (s *Service) Conversation(ctx context.Context, callerID, otherID int) ([]*Message, error) {
	return s.store.Conversation(ctx, callerID, otherID)
}
