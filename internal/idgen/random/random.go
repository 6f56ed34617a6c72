package random

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Generator hands out random UUIDv4 ids.
type Generator struct{}

func New() *Generator {
	return &Generator{}
}

func (g *Generator) GetID(_ context.Context) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}

	return id.String(), nil
}
