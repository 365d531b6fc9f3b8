package events

import "context"

// StreamWallet carries wallet session changes for every browser session.
const StreamWallet = "events:wallet"

// Event types
const (
	EventWalletConnected      = "wallet_connected"
	EventWalletAccountChanged = "wallet_account_changed"
	EventWalletDisconnected   = "wallet_disconnected"
)

type Event struct {
	Type      string         `json:"type"`
	SessionID string         `json:"session_id"`
	Payload   map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
