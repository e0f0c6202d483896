// Package minting defines the boundary to the external NFT minting
// collaborator. The engine never calls a minter directly; the mint
// worker drains the achievement queue and acknowledges completions back
// through the engine.
package minting

import (
	"context"
)

// Result is the minting collaborator's answer for one achievement.
type Result struct {
	Success   bool   `json:"success"`
	Address   string `json:"address,omitempty"`
	Signature string `json:"signature,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Minter mints a token for an achievement and reports success or failure.
type Minter interface {
	MintAchievement(ctx context.Context, wallet string, achievementID string, metadata map[string]string) (*Result, error)
}
