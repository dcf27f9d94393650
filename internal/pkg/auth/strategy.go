package auth

import "time"

// Strategy issues and verifies customer session tokens.
type Strategy interface {
	IssueToken(customerID int64) (string, error)
	ParseToken(token string) (int64, error)
}

// Options tunes token issuing.
type Options struct {
	TTL time.Duration
}
