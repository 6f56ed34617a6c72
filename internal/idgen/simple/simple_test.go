package simple

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_GetID(t *testing.T) {
	g := New("bs")

	id, err := g.GetID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bs-1", id)

	id, err = g.GetID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bs-2", id)
}

func TestGenerator_Concurrent(t *testing.T) {
	g := New("x")

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[string]struct{})
	)

	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			id, _ := g.GetID(context.Background())

			mu.Lock()
			ids[id] = struct{}{}
			mu.Unlock()
		}()
	}

	wg.Wait()

	assert.Len(t, ids, 50)
}
