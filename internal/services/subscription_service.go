package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/smartforge/landing/internal/models"
	"go.uber.org/zap"
)

var emailPattern = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)

type SubscriptionStore interface {
	Insert(ctx context.Context, sub *models.EmailSubscription) error
}

type SubscriptionService struct {
	store SubscriptionStore
	log   *zap.Logger
}

func NewSubscriptionService(store SubscriptionStore, log *zap.Logger) *SubscriptionService {
	return &SubscriptionService{store: store, log: log}
}

// NormalizeEmail trims and lowercases the address and checks its syntax.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", &ValidationError{Field: "email", Rule: RuleRequired}
	}
	if len(email) > 255 || !emailPattern.MatchString(email) {
		return "", &ValidationError{Field: "email", Rule: RuleFormat}
	}
	return email, nil
}

// Subscribe stores a new address. Invalid input never reaches the store.
func (s *SubscriptionService) Subscribe(ctx context.Context, raw string) (*models.EmailSubscription, error) {
	email, err := NormalizeEmail(raw)
	if err != nil {
		return nil, err
	}

	sub := &models.EmailSubscription{Email: email}
	if err := s.store.Insert(ctx, sub); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			s.log.Info("duplicate subscription", zap.String("email", email))
			return nil, ErrDuplicateEmail
		}
		s.log.Error("failed to store subscription", zap.String("email", email), zap.Error(err))
		return nil, &StorageError{Op: "insert email", Err: err}
	}

	s.log.Info("email subscribed", zap.Int64("id", sub.ID))
	return sub, nil
}
