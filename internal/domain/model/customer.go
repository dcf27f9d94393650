package model

import "time"

// Customer describes a registered shop customer.
type Customer struct {
	ID           int64
	Login        string
	PasswordHash string
	CreatedAt    time.Time
}
