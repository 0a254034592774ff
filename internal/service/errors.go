package service

import "errors"

// Ledger error taxonomy. Validation errors are returned before any
// transaction opens; errors raised mid-transaction roll the whole
// transaction back and surface unchanged.
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidCoin         = errors.New("unsupported coin")
	ErrInvalidTerm         = errors.New("invalid staking term")
	ErrNoActivePosition    = errors.New("no active staking position")
	ErrAmountExceedsStaked = errors.New("amount exceeds staked principal")
	ErrPositionExists      = errors.New("active staking position already exists")
	ErrRewardOutOfRange    = errors.New("reward amount out of range")
	ErrFundsStaked         = errors.New("funds are locked in staking")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAddress      = errors.New("invalid destination address")
	ErrAccountNotFound     = errors.New("account not found")
	ErrDepositNotFound     = errors.New("deposit record not found")
	ErrReferralInvalid     = errors.New("invalid referral code")
	ErrReferralUsed        = errors.New("referral code already used")
)
