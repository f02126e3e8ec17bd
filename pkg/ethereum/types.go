package ethereum

import "errors"

var (
	// ErrWrongNetwork is returned when the RPC endpoint serves a different
	// chain than the one configured (Sepolia by default).
	ErrWrongNetwork = errors.New("connected to wrong network")
	// ErrMintReverted is returned when the mint transaction is mined but
	// reverted on chain.
	ErrMintReverted = errors.New("mint transaction reverted")
	// ErrNoTransferEvent is returned when a successful mint receipt carries
	// no Transfer log to recover the token id from.
	ErrNoTransferEvent = errors.New("no transfer event in mint receipt")
)

// MintResult carries the identifiers produced by a successful mint.
type MintResult struct {
	TokenID string
	TxHash  string
}
