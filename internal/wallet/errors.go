package wallet

import (
	"errors"
	"fmt"
)

var (
	ErrProviderMissing = errors.New("wallet provider is not installed")
	ErrWrongProvider   = errors.New("wallet provider is not the expected vendor")
	ErrUserRejected    = errors.New("wallet access was rejected by the user")
	ErrConnection      = errors.New("wallet connection error")

	ErrAlreadyConnected = errors.New("a wallet is already connected")
)

// codeUserRejected is the EIP-1193 "user rejected request" code. Phantom reuses it.
const codeUserRejected = 4001

func connectionError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrConnection, op, err)
}

// classify keeps already classified errors and wraps everything else as a
// connection error.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, ErrProviderMissing),
		errors.Is(err, ErrWrongProvider),
		errors.Is(err, ErrUserRejected),
		errors.Is(err, ErrConnection):
		return err
	}
	return connectionError(op, err)
}
