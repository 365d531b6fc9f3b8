package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smartforge/landing/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryStore mimics the unique index on emails.email.
type memoryStore struct {
	rows   []models.EmailSubscription
	calls  int
	failOn error
}

func (m *memoryStore) Insert(ctx context.Context, sub *models.EmailSubscription) error {
	m.calls++
	if m.failOn != nil {
		return m.failOn
	}
	for _, r := range m.rows {
		if r.Email == sub.Email {
			return ErrDuplicateEmail
		}
	}
	sub.ID = int64(len(m.rows) + 1)
	sub.CreatedAt = time.Now()
	m.rows = append(m.rows, *sub)
	return nil
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		rule     string
	}{
		{"user@example.com", "user@example.com", ""},
		{"  User.Name+tag@Mail.Example.org ", "user.name+tag@mail.example.org", ""},
		{"", "", RuleRequired},
		{"   ", "", RuleRequired},
		{"not-an-email", "", RuleFormat},
		{"a@b", "", RuleFormat},
		{"a@b.c", "", RuleFormat},
		{"two@@example.com", "", RuleFormat},
		{"user@[192.168.0.1]", "user@[192.168.0.1]", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeEmail(tt.input)
			if tt.rule == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, got)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "email", verr.Field)
			assert.Equal(t, tt.rule, verr.Rule)
		})
	}
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	store := &memoryStore{}
	svc := NewSubscriptionService(store, zap.NewNop())

	sub, err := svc.Subscribe(ctx, "Founder@SmartForge.ai")
	require.NoError(t, err)
	assert.Equal(t, int64(1), sub.ID)
	assert.Equal(t, "founder@smartforge.ai", sub.Email)
	assert.Len(t, store.rows, 1)

	_, err = svc.Subscribe(ctx, "founder@smartforge.ai")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Len(t, store.rows, 1)
}

func TestSubscribe_InvalidNeverReachesStore(t *testing.T) {
	store := &memoryStore{}
	svc := NewSubscriptionService(store, zap.NewNop())

	for _, input := range []string{"", "not-an-email", "a@b"} {
		_, err := svc.Subscribe(context.Background(), input)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, input)
	}
	assert.Equal(t, 0, store.calls)
}

func TestSubscribe_StorageError(t *testing.T) {
	cause := errors.New("connection refused")
	svc := NewSubscriptionService(&memoryStore{failOn: cause}, zap.NewNop())

	_, err := svc.Subscribe(context.Background(), "user@example.com")

	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrDuplicateEmail)
}

func TestValidationErrorMessage(t *testing.T) {
	assert.Equal(t, "email is required", (&ValidationError{Field: "email", Rule: RuleRequired}).Error())
	assert.Equal(t, "email is invalid", (&ValidationError{Field: "email", Rule: RuleFormat}).Error())
}
