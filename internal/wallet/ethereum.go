package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// codeMethodNotFound is returned by nodes that do not implement
// eth_requestAccounts (geth, for instance).
const codeMethodNotFound = -32601

type ethCaller interface {
	CallContext(ctx context.Context, result any, method string, args ...any) error
}

// EthereumProvider talks EIP-1193 style JSON-RPC to an Ethereum endpoint.
// Account changes are detected by polling eth_accounts while subscribed.
type EthereumProvider struct {
	client   ethCaller
	interval time.Duration
	log      *zap.Logger

	listeners listeners
	watcher   watcher

	mu       sync.Mutex
	accounts []string
}

// DialEthereum connects lazily to url. An empty url means no provider is
// installed.
func DialEthereum(ctx context.Context, url string) (*rpc.Client, error) {
	if url == "" {
		return nil, ErrProviderMissing
	}
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial ethereum rpc: %w", err)
	}
	return client, nil
}

func NewEthereumProvider(client ethCaller, interval time.Duration, log *zap.Logger) *EthereumProvider {
	p := &EthereumProvider{client: client, interval: interval, log: log}
	p.listeners.onFirst = func() { p.watcher.start(p.interval, p.poll) }
	p.listeners.onLast = p.watcher.stop
	return p
}

func (p *EthereumProvider) Kind() Kind { return KindEthereum }

func (p *EthereumProvider) Vendor(ctx context.Context) (string, error) {
	var version string
	if err := p.client.CallContext(ctx, &version, "web3_clientVersion"); err != nil {
		return "", ethError("web3_clientVersion", err)
	}
	return version, nil
}

func (p *EthereumProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	var raw []string
	err := p.client.CallContext(ctx, &raw, "eth_requestAccounts")
	if rpcErrorCode(err) == codeMethodNotFound {
		err = p.client.CallContext(ctx, &raw, "eth_accounts")
	}
	if err != nil {
		return nil, ethError("eth_requestAccounts", err)
	}

	accounts, err := checksumAccounts(raw)
	if err != nil {
		return nil, connectionError("eth_requestAccounts", err)
	}

	p.mu.Lock()
	p.accounts = accounts
	p.mu.Unlock()
	return accounts, nil
}

// Disconnect is a no-op: EIP-1193 providers have no disconnect method, the
// session simply stops listening.
func (p *EthereumProvider) Disconnect(ctx context.Context) error {
	return nil
}

func (p *EthereumProvider) Balance(ctx context.Context, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid ethereum address %q", address)
	}
	var balance hexutil.Big
	if err := p.client.CallContext(ctx, &balance, "eth_getBalance", common.HexToAddress(address), "latest"); err != nil {
		return nil, ethError("eth_getBalance", err)
	}
	return balance.ToInt(), nil
}

func (p *EthereumProvider) Subscribe(handler func(Event)) func() {
	return p.listeners.add(handler)
}

func (p *EthereumProvider) poll(ctx context.Context) {
	var raw []string
	if err := p.client.CallContext(ctx, &raw, "eth_accounts"); err != nil {
		if ctx.Err() == nil {
			p.log.Debug("eth_accounts poll failed", zap.Error(err))
		}
		return
	}
	accounts, err := checksumAccounts(raw)
	if err != nil {
		p.log.Debug("eth_accounts returned invalid address", zap.Error(err))
		return
	}

	p.mu.Lock()
	changed := !slices.Equal(p.accounts, accounts)
	p.accounts = accounts
	p.mu.Unlock()

	if changed {
		p.listeners.emit(Event{Type: EventAccountsChanged, Accounts: accounts})
	}
}

func checksumAccounts(raw []string) ([]string, error) {
	accounts := make([]string, 0, len(raw))
	for _, a := range raw {
		if !common.IsHexAddress(a) {
			return nil, fmt.Errorf("invalid ethereum address %q", a)
		}
		accounts = append(accounts, common.HexToAddress(a).Hex())
	}
	return accounts, nil
}

func rpcErrorCode(err error) int {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.ErrorCode()
	}
	return 0
}

func ethError(method string, err error) error {
	if rpcErrorCode(err) == codeUserRejected {
		return fmt.Errorf("%w: %v", ErrUserRejected, err)
	}
	return connectionError(method, err)
}
