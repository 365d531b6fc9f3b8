package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smartforge/landing/internal/events"
	"github.com/smartforge/landing/internal/wallet"
	"go.uber.org/zap"
)

const publishTimeout = 2 * time.Second

// ProviderFactory builds the providers for one browser session.
type ProviderFactory func() []wallet.Provider

type WalletStatus struct {
	State   wallet.State    `json:"state"`
	Session *wallet.Session `json:"session"`
}

type WalletBalance struct {
	Kind     wallet.Kind      `json:"kind"`
	Address  string           `json:"address"`
	Balance  *decimal.Decimal `json:"balance"`
	Currency string           `json:"currency"`
}

type walletSession struct {
	manager   *wallet.Manager
	expiresAt time.Time
}

// WalletSessions owns one wallet.Manager per browser session and publishes
// their state changes on events.StreamWallet.
type WalletSessions struct {
	providers ProviderFactory
	vendors   map[wallet.Kind]string
	publisher events.Publisher
	ttl       time.Duration
	log       *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*walletSession
}

func NewWalletSessions(
	providers ProviderFactory,
	vendors map[wallet.Kind]string,
	publisher events.Publisher,
	ttl time.Duration,
	log *zap.Logger,
) *WalletSessions {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &WalletSessions{
		providers: providers,
		vendors:   vendors,
		publisher: publisher,
		ttl:       ttl,
		log:       log,
		now:       time.Now,
		sessions:  make(map[uuid.UUID]*walletSession),
	}
}

func (s *WalletSessions) Create() uuid.UUID {
	id := uuid.New()

	opts := []wallet.Option{wallet.WithOnChange(s.publishChanges(id))}
	for kind, vendor := range s.vendors {
		opts = append(opts, wallet.WithExpectedVendor(kind, vendor))
	}
	m := wallet.NewManager(s.providers(), s.log.With(zap.String("session_id", id.String())), opts...)

	s.mu.Lock()
	s.sessions[id] = &walletSession{manager: m, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()

	s.log.Info("wallet session created", zap.String("session_id", id.String()))
	return id
}

func (s *WalletSessions) manager(id uuid.UUID) (*wallet.Manager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || s.now().After(sess.expiresAt) {
		return nil, ErrSessionNotFound
	}
	return sess.manager, nil
}

// Connect opens a wallet for the session. Replacing a connected wallet must be
// requested explicitly.
func (s *WalletSessions) Connect(ctx context.Context, id uuid.UUID, kind wallet.Kind, replace bool) (*wallet.Session, error) {
	m, err := s.manager(id)
	if err != nil {
		return nil, err
	}
	if replace {
		return m.Connect(ctx, kind)
	}
	return m.ConnectIfDisconnected(ctx, kind)
}

func (s *WalletSessions) Disconnect(ctx context.Context, id uuid.UUID) error {
	m, err := s.manager(id)
	if err != nil {
		return err
	}
	m.Disconnect(ctx)
	return nil
}

func (s *WalletSessions) Status(id uuid.UUID) (*WalletStatus, error) {
	m, err := s.manager(id)
	if err != nil {
		return nil, err
	}
	return &WalletStatus{State: m.State(), Session: m.Account()}, nil
}

// Balance returns a nil Balance when disconnected or when the query fails.
func (s *WalletSessions) Balance(ctx context.Context, id uuid.UUID) (*WalletBalance, error) {
	m, err := s.manager(id)
	if err != nil {
		return nil, err
	}
	res := &WalletBalance{Balance: m.Balance(ctx)}
	if acc := m.Account(); acc != nil {
		res.Kind = acc.Kind
		res.Address = acc.Address
		res.Currency = acc.Kind.Currency()
	}
	return res, nil
}

// Close disconnects the wallet and forgets the session.
func (s *WalletSessions) Close(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	sess.manager.Disconnect(ctx)
	s.log.Info("wallet session closed", zap.String("session_id", id.String()))
	return nil
}

// Sweep closes expired sessions and returns how many were removed.
func (s *WalletSessions) Sweep(ctx context.Context) int {
	now := s.now()
	var expired []*walletSession

	s.mu.Lock()
	for id, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.manager.Disconnect(ctx)
	}
	if len(expired) > 0 {
		s.log.Info("expired wallet sessions swept", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *WalletSessions) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// CloseAll disconnects every session, for shutdown.
func (s *WalletSessions) CloseAll(ctx context.Context) {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[uuid.UUID]*walletSession)
	s.mu.Unlock()

	for _, sess := range all {
		sess.manager.Disconnect(ctx)
	}
}

func (s *WalletSessions) publishChanges(id uuid.UUID) func(wallet.State, *wallet.Session) {
	var (
		mu          sync.Mutex
		lastAddress string
	)
	return func(state wallet.State, sess *wallet.Session) {
		mu.Lock()
		var eventType string
		payload := map[string]any{"state": string(state)}
		switch {
		case state == wallet.StateConnected && sess != nil && lastAddress == "":
			eventType = events.EventWalletConnected
		case state == wallet.StateConnected && sess != nil && sess.Address != lastAddress:
			eventType = events.EventWalletAccountChanged
			payload["previous_address"] = lastAddress
		case state == wallet.StateDisconnected && lastAddress != "":
			eventType = events.EventWalletDisconnected
		}
		if sess != nil {
			payload["kind"] = string(sess.Kind)
			payload["address"] = sess.Address
			lastAddress = sess.Address
		} else if state == wallet.StateDisconnected {
			lastAddress = ""
		}
		mu.Unlock()

		if eventType == "" || s.publisher == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		err := s.publisher.Publish(ctx, events.StreamWallet, events.Event{
			Type:      eventType,
			SessionID: id.String(),
			Payload:   payload,
		})
		if err != nil {
			s.log.Warn("failed to publish wallet event",
				zap.String("session_id", id.String()),
				zap.String("type", eventType),
				zap.Error(err),
			)
		}
	}
}
