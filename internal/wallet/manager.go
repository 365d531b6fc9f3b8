package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Manager owns a single wallet session. One Manager is created per browser
// session; it is never shared between users.
type Manager struct {
	providers map[Kind]Provider
	vendors   map[Kind]string
	onChange  func(State, *Session)
	log       *zap.Logger

	// opMu serialises Connect and Disconnect.
	opMu sync.Mutex

	mu          sync.Mutex
	state       State
	session     *Session
	provider    Provider
	unsubscribe func()
	// generation changes whenever a session starts or ends; events carrying an
	// older generation belong to a released subscription and are dropped.
	generation uint64
}

type Option func(*Manager)

// WithExpectedVendor requires the provider of the given kind to identify with
// a vendor string starting with vendor (case-insensitive).
func WithExpectedVendor(kind Kind, vendor string) Option {
	return func(m *Manager) {
		if vendor != "" {
			m.vendors[kind] = vendor
		}
	}
}

// WithOnChange registers a hook called after every state transition. The
// session is a copy and is nil when disconnected.
func WithOnChange(fn func(State, *Session)) Option {
	return func(m *Manager) {
		m.onChange = fn
	}
}

func NewManager(providers []Provider, log *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		providers: make(map[Kind]Provider, len(providers)),
		vendors:   make(map[Kind]string),
		log:       log,
		state:     StateDisconnected,
	}
	for _, p := range providers {
		if p != nil {
			m.providers[p.Kind()] = p
		}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Connect opens a session with the provider of the given kind. An existing
// session is torn down first; asking the user for confirmation is up to the
// caller. A missing provider leaves the existing session untouched.
func (m *Manager) Connect(ctx context.Context, kind Kind) (*Session, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	return m.connect(ctx, kind)
}

// ConnectIfDisconnected is Connect that fails with ErrAlreadyConnected instead
// of replacing a live session. The check and the connect run under one lock.
func (m *Manager) ConnectIfDisconnected(ctx context.Context, kind Kind) (*Session, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	if m.IsConnected() {
		return nil, ErrAlreadyConnected
	}
	return m.connect(ctx, kind)
}

func (m *Manager) connect(ctx context.Context, kind Kind) (*Session, error) {
	p, ok := m.providers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderMissing, kind)
	}

	if m.IsConnected() {
		m.disconnect(ctx)
	}

	m.transition(StateConnecting, nil)

	address, err := m.open(ctx, kind, p)
	if err != nil {
		m.transition(StateDisconnected, nil)
		m.log.Info("wallet connect failed", zap.String("kind", string(kind)), zap.Error(err))
		return nil, err
	}

	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.provider = p
	m.session = &Session{Kind: kind, Address: address}
	m.state = StateConnected
	snapshot := m.session.clone()
	m.mu.Unlock()

	unsubscribe := p.Subscribe(func(ev Event) { m.handleEvent(gen, ev) })

	m.mu.Lock()
	stale := m.generation != gen
	if !stale {
		m.unsubscribe = unsubscribe
	}
	m.mu.Unlock()

	if stale {
		// A provider event already ended the session.
		unsubscribe()
		return nil, connectionError("connect", errors.New("wallet disconnected during connect"))
	}

	m.notify(StateConnected, snapshot)
	m.log.Info("wallet connected", zap.String("kind", string(kind)), zap.String("address", address))
	return snapshot.clone(), nil
}

func (m *Manager) open(ctx context.Context, kind Kind, p Provider) (string, error) {
	vendor, err := p.Vendor(ctx)
	if err != nil {
		return "", classify("identify provider", err)
	}
	if want, ok := m.vendors[kind]; ok && !strings.HasPrefix(strings.ToLower(vendor), strings.ToLower(want)) {
		return "", fmt.Errorf("%w: got %q, want %q", ErrWrongProvider, vendor, want)
	}

	accounts, err := p.RequestAccounts(ctx)
	if err != nil {
		return "", classify("request accounts", err)
	}
	if len(accounts) == 0 || accounts[0] == "" {
		return "", connectionError("request accounts", errors.New("provider returned no accounts"))
	}
	return accounts[0], nil
}

// Disconnect ends the current session. It is a no-op when disconnected.
func (m *Manager) Disconnect(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.disconnect(ctx)
}

func (m *Manager) disconnect(ctx context.Context) {
	m.mu.Lock()
	if m.session == nil {
		m.mu.Unlock()
		return
	}
	p, unsubscribe := m.release()
	m.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if err := p.Disconnect(ctx); err != nil {
		m.log.Warn("provider disconnect failed", zap.String("kind", string(p.Kind())), zap.Error(err))
	}

	m.notify(StateDisconnected, nil)
	m.log.Info("wallet disconnected", zap.String("kind", string(p.Kind())))
}

// release clears the session. Callers hold m.mu and must call the returned
// unsubscribe after unlocking.
func (m *Manager) release() (Provider, func()) {
	p, unsubscribe := m.provider, m.unsubscribe
	m.generation++
	m.provider = nil
	m.unsubscribe = nil
	m.session = nil
	m.state = StateDisconnected
	return p, unsubscribe
}

func (m *Manager) handleEvent(gen uint64, ev Event) {
	m.mu.Lock()
	if gen != m.generation || m.session == nil {
		m.mu.Unlock()
		return
	}

	switch {
	case ev.Type == EventDisconnect,
		ev.Type == EventAccountsChanged && (len(ev.Accounts) == 0 || ev.Accounts[0] == ""):
		_, unsubscribe := m.release()
		m.mu.Unlock()
		if unsubscribe != nil {
			unsubscribe()
		}
		m.notify(StateDisconnected, nil)
		m.log.Info("wallet disconnected by provider", zap.String("event", string(ev.Type)))

	case ev.Type == EventAccountsChanged && ev.Accounts[0] != m.session.Address:
		m.session.Address = ev.Accounts[0]
		m.session.CachedBalance = nil
		m.session.CachedCurrency = ""
		snapshot := m.session.clone()
		m.mu.Unlock()
		m.notify(StateConnected, snapshot)
		m.log.Info("wallet account changed", zap.String("address", snapshot.Address))

	default:
		m.mu.Unlock()
	}
}

// Balance returns the native balance of the connected account in display
// units. It returns nil when there is no session or the query fails.
func (m *Manager) Balance(ctx context.Context) *decimal.Decimal {
	m.mu.Lock()
	if m.session == nil {
		m.mu.Unlock()
		return nil
	}
	p, gen := m.provider, m.generation
	kind, address := m.session.Kind, m.session.Address
	m.mu.Unlock()

	amount, err := p.Balance(ctx, address)
	if err != nil {
		m.log.Debug("balance query failed", zap.String("address", address), zap.Error(err))
		return nil
	}
	balance := ToDisplayUnits(amount, kind)

	m.mu.Lock()
	if m.generation == gen && m.session != nil && m.session.Address == address {
		cached := balance
		m.session.CachedBalance = &cached
		m.session.CachedCurrency = kind.Currency()
	}
	m.mu.Unlock()

	return &balance
}

func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil
}

// Account returns a copy of the current session, or nil.
func (m *Manager) Account() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.clone()
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) transition(state State, snapshot *Session) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
	m.notify(state, snapshot)
}

func (m *Manager) notify(state State, snapshot *Session) {
	if m.onChange != nil {
		m.onChange(state, snapshot)
	}
}
