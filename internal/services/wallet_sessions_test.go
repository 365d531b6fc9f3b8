package services

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/smartforge/landing/internal/events"
	"github.com/smartforge/landing/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProvider struct {
	kind    wallet.Kind
	vendor  string
	account string
	balance *big.Int

	mu       sync.Mutex
	handlers map[int]func(wallet.Event)
	next     int
}

func (p *stubProvider) Kind() wallet.Kind { return p.kind }

func (p *stubProvider) Vendor(ctx context.Context) (string, error) { return p.vendor, nil }

func (p *stubProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	return []string{p.account}, nil
}

func (p *stubProvider) Disconnect(ctx context.Context) error { return nil }

func (p *stubProvider) Balance(ctx context.Context, address string) (*big.Int, error) {
	return p.balance, nil
}

func (p *stubProvider) Subscribe(handler func(wallet.Event)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handlers == nil {
		p.handlers = make(map[int]func(wallet.Event))
	}
	id := p.next
	p.next++
	p.handlers[id] = handler
	return func() {
		p.mu.Lock()
		delete(p.handlers, id)
		p.mu.Unlock()
	}
}

func (p *stubProvider) emit(ev wallet.Event) {
	p.mu.Lock()
	var hs []func(wallet.Event)
	for _, h := range p.handlers {
		hs = append(hs, h)
	}
	p.mu.Unlock()
	for _, h := range hs {
		h(ev)
	}
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingBus) Publish(ctx context.Context, stream string, ev events.Event) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

func (r *recordingBus) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

const (
	ethAddress = "0x52908400098527886E0F7030069857D2E4169EE7"
	solAddress = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
)

func newTestSessions(t *testing.T, bus events.Publisher) (*WalletSessions, *stubProvider, *stubProvider) {
	t.Helper()
	eth := &stubProvider{kind: wallet.KindEthereum, vendor: "MetaMask/v11", account: ethAddress, balance: big.NewInt(5e17)}
	sol := &stubProvider{kind: wallet.KindSolana, vendor: "solana-core/1.18", account: solAddress, balance: big.NewInt(3e9)}
	factory := func() []wallet.Provider { return []wallet.Provider{eth, sol} }
	vendors := map[wallet.Kind]string{wallet.KindEthereum: "metamask"}
	return NewWalletSessions(factory, vendors, bus, time.Hour, zap.NewNop()), eth, sol
}

func TestWalletSessions_ConnectLifecycle(t *testing.T) {
	ctx := context.Background()
	bus := &recordingBus{}
	sessions, _, _ := newTestSessions(t, bus)
	id := sessions.Create()

	status, err := sessions.Status(id)
	require.NoError(t, err)
	assert.Equal(t, wallet.StateDisconnected, status.State)
	assert.Nil(t, status.Session)

	sess, err := sessions.Connect(ctx, id, wallet.KindEthereum, false)
	require.NoError(t, err)
	assert.Equal(t, ethAddress, sess.Address)

	bal, err := sessions.Balance(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, bal.Balance)
	assert.Equal(t, "0.5", bal.Balance.String())
	assert.Equal(t, "ETH", bal.Currency)

	_, err = sessions.Connect(ctx, id, wallet.KindSolana, false)
	assert.ErrorIs(t, err, ErrAlreadyConnected)

	sess, err = sessions.Connect(ctx, id, wallet.KindSolana, true)
	require.NoError(t, err)
	assert.Equal(t, solAddress, sess.Address)

	require.NoError(t, sessions.Disconnect(ctx, id))

	bal, err = sessions.Balance(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, bal.Balance)

	assert.Equal(t, []string{
		events.EventWalletConnected,
		events.EventWalletDisconnected,
		events.EventWalletConnected,
		events.EventWalletDisconnected,
	}, bus.types())
}

func TestWalletSessions_ConcurrentConnectWithoutReplace(t *testing.T) {
	ctx := context.Background()
	bus := &recordingBus{}
	sessions, _, _ := newTestSessions(t, bus)
	id := sessions.Create()

	kinds := []wallet.Kind{wallet.KindEthereum, wallet.KindSolana}
	const workers = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		connected int
		rejected  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(kind wallet.Kind) {
			defer wg.Done()
			_, err := sessions.Connect(ctx, id, kind, false)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				connected++
			case assert.ErrorIs(t, err, ErrAlreadyConnected):
				rejected++
			}
		}(kinds[i%len(kinds)])
	}
	wg.Wait()

	assert.Equal(t, 1, connected)
	assert.Equal(t, workers-1, rejected)
	assert.Equal(t, []string{events.EventWalletConnected}, bus.types())
}

func TestWalletSessions_PublishesAccountChange(t *testing.T) {
	bus := &recordingBus{}
	sessions, eth, _ := newTestSessions(t, bus)
	id := sessions.Create()

	_, err := sessions.Connect(context.Background(), id, wallet.KindEthereum, false)
	require.NoError(t, err)

	const next = "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"
	eth.emit(wallet.Event{Type: wallet.EventAccountsChanged, Accounts: []string{next}})
	eth.emit(wallet.Event{Type: wallet.EventAccountsChanged})

	require.Equal(t, []string{
		events.EventWalletConnected,
		events.EventWalletAccountChanged,
		events.EventWalletDisconnected,
	}, bus.types())

	changed := bus.events[1]
	assert.Equal(t, id.String(), changed.SessionID)
	assert.Equal(t, next, changed.Payload["address"])
	assert.Equal(t, ethAddress, changed.Payload["previous_address"])
}

func TestWalletSessions_FailedConnectPublishesNothing(t *testing.T) {
	bus := &recordingBus{}
	sessions, eth, _ := newTestSessions(t, bus)
	eth.vendor = "Coinbase Wallet"
	id := sessions.Create()

	_, err := sessions.Connect(context.Background(), id, wallet.KindEthereum, false)

	assert.ErrorIs(t, err, wallet.ErrWrongProvider)
	assert.Empty(t, bus.types())
}

func TestWalletSessions_UnknownSession(t *testing.T) {
	ctx := context.Background()
	sessions, _, _ := newTestSessions(t, nil)
	id := uuid.New()

	_, err := sessions.Connect(ctx, id, wallet.KindEthereum, false)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, sessions.Disconnect(ctx, id), ErrSessionNotFound)
	_, err = sessions.Status(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, sessions.Close(ctx, id), ErrSessionNotFound)
}

func TestWalletSessions_CloseAndSweep(t *testing.T) {
	ctx := context.Background()
	bus := &recordingBus{}
	sessions, eth, _ := newTestSessions(t, bus)

	now := time.Now()
	sessions.now = func() time.Time { return now }

	closed := sessions.Create()
	_, err := sessions.Connect(ctx, closed, wallet.KindEthereum, false)
	require.NoError(t, err)
	require.NoError(t, sessions.Close(ctx, closed))
	_, err = sessions.Status(closed)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	stale := sessions.Create()
	_, err = sessions.Connect(ctx, stale, wallet.KindEthereum, false)
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	fresh := sessions.Create()

	_, err = sessions.Status(stale)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.Equal(t, 1, sessions.Sweep(ctx))
	_, err = sessions.Status(fresh)
	assert.NoError(t, err)

	eth.mu.Lock()
	assert.Empty(t, eth.handlers)
	eth.mu.Unlock()
}
