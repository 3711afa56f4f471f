package repository

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidBudget = errors.New("budget amount must be greater than zero")
)
