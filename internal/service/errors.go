package service

import (
	"errors"

	"refusal-tracker/internal/savings"
)

// Validation errors. They are returned before any storage call is made.
var (
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidCategory = errors.New("unknown category")
	ErrInvalidCurrency = errors.New("currency must be a 3-letter code")
	ErrNameRequired    = errors.New("name is required")
	ErrInvalidBaseline = savings.ErrInvalidBaseline
	ErrInvalidTag      = errors.New("unknown why tag")
	ErrInvalidUsername = errors.New("username must be 3-32 letters, digits or underscores")
	ErrInvalidGoal     = errors.New("goal target must be positive")
	ErrInvalidPeriod   = errors.New("unknown period")
)

// Lookup and state errors.
var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrReferralCodeNotFound = errors.New("referral code not found")
	ErrTaskAlreadyCompleted = errors.New("task already completed today")
	ErrTaskNotCompleted     = errors.New("task condition not met")
)
