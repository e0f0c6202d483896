package minting

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// DryRunMinter is a minter that mints nothing: it logs the request and
// reports success with a synthetic signature. Used when no on-chain
// collaborator is configured, so the queue drain path stays exercised.
type DryRunMinter struct {
	logger *slog.Logger
}

// Ensure DryRunMinter implements Minter interface
var _ Minter = (*DryRunMinter)(nil)

func NewDryRunMinter(logger *slog.Logger) *DryRunMinter {
	return &DryRunMinter{logger: logger}
}

func (d *DryRunMinter) MintAchievement(ctx context.Context, wallet string, achievementID string, metadata map[string]string) (*Result, error) {
	signature := "dry-run-" + uuid.New().String()

	d.logger.Info("Dry-run mint",
		"wallet", wallet,
		"achievement", achievementID,
		"signature", signature)

	return &Result{
		Success:   true,
		Signature: signature,
	}, nil
}
