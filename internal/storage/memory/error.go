package memory

import "errors"

var (
	ErrTransactionIDNotFoundInCtx = errors.New("no transaction id found in ctx")
	ErrTransactionNotFound        = errors.New("transaction not found")
	ErrEmptyID                    = errors.New("record id is empty")
	ErrDuplicate                  = errors.New("record already exists")
)
