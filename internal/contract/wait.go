package contract

import (
	"context"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/fundme/internal/provider"
	"github.com/ethereum/go-ethereum/common"
)

// DefaultPollInterval is how often WaitMined asks for the receipt.
const DefaultPollInterval = 2 * time.Second

// ReceiptBackend is what WaitMined polls.
type ReceiptBackend interface {
	TransactionReceipt(ctx context.Context, hash common.Hash) (*provider.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// WaitMined blocks until hash has at least confirmations blocks on top of
// and including its own, or ctx is done. There is no local timeout. A
// mined receipt with status 0 returns ErrReverted together with the receipt.
func WaitMined(ctx context.Context, b ReceiptBackend, hash common.Hash, confirmations uint64, poll time.Duration) (*provider.Receipt, error) {
	if confirmations == 0 {
		confirmations = 1
	}
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		r, err := b.TransactionReceipt(ctx, hash)
		if err != nil {
			return nil, fmt.Errorf("getting receipt for %s: %w", hash.Hex(), err)
		}
		if r != nil {
			head, err := b.BlockNumber(ctx)
			if err != nil {
				return nil, fmt.Errorf("getting block number: %w", err)
			}
			if mined := uint64(r.BlockNumber); head >= mined && head-mined+1 >= confirmations {
				if !r.Succeeded() {
					return r, ErrReverted
				}
				return r, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
