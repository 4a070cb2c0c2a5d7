package utils

import "errors"

// Common application errors used across services.
var (
	ErrCompetitorNotFound = errors.New("COMPETITOR_NOT_FOUND")
	ErrItemNotFound       = errors.New("ITEM_NOT_FOUND")
	ErrTagNotFound        = errors.New("TAG_NOT_FOUND")
	ErrProductNotFound    = errors.New("COMPETITOR_PRODUCT_NOT_FOUND")
)
