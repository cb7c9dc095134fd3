package storage

import "errors"

// Storage error constants
var (
	// ErrRuleNotFound is returned when a rule is not found
	ErrRuleNotFound = errors.New("rule not found")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateRule is returned when attempting to create a rule that already exists
	ErrDuplicateRule = errors.New("rule already exists")

	// ErrDuplicateFeedback is returned when a user already left this kind of
	// feedback on the same rule
	ErrDuplicateFeedback = errors.New("feedback already submitted for this rule")

	// ErrInvalidRule is returned when a rule fails validation
	ErrInvalidRule = errors.New("invalid rule")

	// ErrDatabaseClosed is returned when attempting to use a closed database connection
	ErrDatabaseClosed = errors.New("database is closed")
)
