package random

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_GetID(t *testing.T) {
	g := New()

	a, err := g.GetID(context.Background())
	require.NoError(t, err)

	b, err := g.GetID(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}
