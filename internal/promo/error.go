package promo

import "errors"

var ErrNegativeAmount = errors.New("amount must not be negative")
