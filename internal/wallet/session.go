package wallet

import "github.com/shopspring/decimal"

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

type Session struct {
	Kind           Kind             `json:"kind"`
	Address        string           `json:"address"`
	CachedBalance  *decimal.Decimal `json:"cached_balance,omitempty"`
	CachedCurrency string           `json:"cached_currency,omitempty"`
}

func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.CachedBalance != nil {
		b := *s.CachedBalance
		c.CachedBalance = &b
	}
	return &c
}

type EventType string

const (
	EventAccountsChanged EventType = "accountsChanged"
	EventDisconnect      EventType = "disconnect"
)

// Event is emitted by a provider at any time after Subscribe.
type Event struct {
	Type     EventType
	Accounts []string
}
