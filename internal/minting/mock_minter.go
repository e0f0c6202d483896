package minting

import (
	"context"
)

// MockMinter is a mock implementation of Minter for testing
type MockMinter struct {
	MintFunc func(ctx context.Context, wallet string, achievementID string, metadata map[string]string) (*Result, error)

	// Track calls for testing
	MintCalls []MintCall
}

type MintCall struct {
	Wallet        string
	AchievementID string
	Metadata      map[string]string
}

// Ensure MockMinter implements Minter interface
var _ Minter = (*MockMinter)(nil)

// NewMockMinter creates a new mock minter
func NewMockMinter() *MockMinter {
	return &MockMinter{
		MintCalls: make([]MintCall, 0),
	}
}

func (m *MockMinter) MintAchievement(ctx context.Context, wallet string, achievementID string, metadata map[string]string) (*Result, error) {
	m.MintCalls = append(m.MintCalls, MintCall{
		Wallet:        wallet,
		AchievementID: achievementID,
		Metadata:      metadata,
	})

	if m.MintFunc != nil {
		return m.MintFunc(ctx, wallet, achievementID, metadata)
	}

	// Default behavior - success
	return &Result{Success: true, Signature: "mock-signature"}, nil
}

// Reset clears all call tracking
func (m *MockMinter) Reset() {
	m.MintCalls = make([]MintCall, 0)
}
