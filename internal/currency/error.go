package currency

import "errors"

var ErrInvalidRate = errors.New("exchange rate must be positive")
