package backend

import "errors"

var ErrInvalidBaseURL = errors.New("backend url must be absolute")
