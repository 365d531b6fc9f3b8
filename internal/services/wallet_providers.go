package services

import (
	"context"
	"errors"

	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/smartforge/landing/internal/config"
	"github.com/smartforge/landing/internal/wallet"
	"go.uber.org/zap"
)

// NewConfiguredProviders dials the configured RPC endpoints once and returns a
// factory producing fresh providers over the shared clients. A kind whose
// endpoint is not configured is left out, so connecting to it reports
// wallet.ErrProviderMissing.
func NewConfiguredProviders(ctx context.Context, cfg *config.Config, log *zap.Logger) (ProviderFactory, func(), error) {
	eth, err := wallet.DialEthereum(ctx, cfg.EthereumRPCURL)
	if err != nil && !errors.Is(err, wallet.ErrProviderMissing) {
		return nil, nil, err
	}

	var sol *solanarpc.Client
	if cfg.SolanaRPCURL != "" {
		sol = solanarpc.New(cfg.SolanaRPCURL)
	}

	factory := func() []wallet.Provider {
		var providers []wallet.Provider
		if eth != nil {
			providers = append(providers, wallet.NewEthereumProvider(eth, cfg.WatchInterval, log.Named("ethereum")))
		}
		if sol != nil {
			providers = append(providers, wallet.NewSolanaProvider(sol, cfg.SolanaKeypairPath, cfg.WatchInterval, log.Named("solana")))
		}
		return providers
	}

	closeFn := func() {
		if eth != nil {
			eth.Close()
		}
		if sol != nil {
			_ = sol.Close()
		}
	}

	log.Info("wallet providers configured",
		zap.Bool("ethereum", eth != nil),
		zap.Bool("solana", sol != nil),
	)
	return factory, closeFn, nil
}

// ExpectedVendors maps the configured vendor prefixes by kind.
func ExpectedVendors(cfg *config.Config) map[wallet.Kind]string {
	vendors := make(map[wallet.Kind]string)
	if cfg.EthereumExpectedVendor != "" {
		vendors[wallet.KindEthereum] = cfg.EthereumExpectedVendor
	}
	if cfg.SolanaExpectedVendor != "" {
		vendors[wallet.KindSolana] = cfg.SolanaExpectedVendor
	}
	return vendors
}
