package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

type solanaRPC interface {
	GetVersion(ctx context.Context) (*rpc.GetVersionResult, error)
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
}

// SolanaProvider pairs a Solana RPC endpoint with a local keypair file that
// plays the role of the wallet. The file is re-read while subscribed: a new key
// is reported as an account change, a removed file as a disconnect.
type SolanaProvider struct {
	client      solanaRPC
	keypairPath string
	interval    time.Duration
	log         *zap.Logger

	listeners listeners
	watcher   watcher

	mu      sync.Mutex
	current string
}

func NewSolanaProvider(client solanaRPC, keypairPath string, interval time.Duration, log *zap.Logger) *SolanaProvider {
	p := &SolanaProvider{client: client, keypairPath: keypairPath, interval: interval, log: log}
	p.listeners.onFirst = func() { p.watcher.start(p.interval, p.poll) }
	p.listeners.onLast = p.watcher.stop
	return p
}

func (p *SolanaProvider) Kind() Kind { return KindSolana }

func (p *SolanaProvider) Vendor(ctx context.Context) (string, error) {
	v, err := p.client.GetVersion(ctx)
	if err != nil {
		return "", connectionError("getVersion", err)
	}
	return "solana-core/" + v.SolanaCore, nil
}

func (p *SolanaProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	pub, err := p.readPublicKey()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.current = pub
	p.mu.Unlock()
	return []string{pub}, nil
}

func (p *SolanaProvider) Disconnect(ctx context.Context) error {
	p.mu.Lock()
	wasConnected := p.current != ""
	p.current = ""
	p.mu.Unlock()

	if wasConnected {
		p.listeners.emit(Event{Type: EventDisconnect})
	}
	return nil
}

func (p *SolanaProvider) Balance(ctx context.Context, address string) (*big.Int, error) {
	pub, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("invalid solana address %q: %w", address, err)
	}
	res, err := p.client.GetBalance(ctx, pub, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, connectionError("getBalance", err)
	}
	return new(big.Int).SetUint64(res.Value), nil
}

func (p *SolanaProvider) Subscribe(handler func(Event)) func() {
	return p.listeners.add(handler)
}

func (p *SolanaProvider) readPublicKey() (string, error) {
	if p.keypairPath == "" {
		return "", ErrProviderMissing
	}
	if _, err := os.Stat(p.keypairPath); err != nil {
		return "", keypairError(err)
	}
	key, err := solana.PrivateKeyFromSolanaKeygenFile(p.keypairPath)
	if err != nil {
		return "", keypairError(err)
	}
	return key.PublicKey().String(), nil
}

func (p *SolanaProvider) poll(ctx context.Context) {
	p.mu.Lock()
	current := p.current
	p.mu.Unlock()
	if current == "" {
		return
	}

	pub, err := p.readPublicKey()
	switch {
	case errors.Is(err, ErrProviderMissing):
		p.mu.Lock()
		p.current = ""
		p.mu.Unlock()
		p.listeners.emit(Event{Type: EventDisconnect})
	case err != nil:
		p.log.Debug("keypair poll failed", zap.Error(err))
	case pub != current:
		p.mu.Lock()
		p.current = pub
		p.mu.Unlock()
		p.listeners.emit(Event{Type: EventAccountsChanged, Accounts: []string{pub}})
	}
}

func keypairError(err error) error {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %v", ErrProviderMissing, err)
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %v", ErrUserRejected, err)
	}
	return connectionError("read keypair", err)
}
