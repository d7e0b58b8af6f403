package dataloader

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStringLoader(fetches *[][]int, mu *sync.Mutex) *Loader[int, string] {
	return New(Config[int, string]{
		Wait:     5 * time.Millisecond,
		MaxBatch: 100,
		Fetch: func(keys []int) ([]string, []error) {
			mu.Lock()
			*fetches = append(*fetches, append([]int(nil), keys...))
			mu.Unlock()

			values := make([]string, len(keys))
			for i, key := range keys {
				values[i] = fmt.Sprintf("value-%d", key)
			}
			return values, nil
		},
	})
}

func TestLoadCoalescesIntoOneBatch(t *testing.T) {
	var mu sync.Mutex
	var fetches [][]int
	loader := newStringLoader(&fetches, &mu)

	var wg sync.WaitGroup
	results := make([]string, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			value, err := loader.Load(i % 5)
			if err != nil {
				t.Errorf("load %d: %v", i, err)
				return
			}
			results[i] = value
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, fetches, 1, "expected a single batch fetch")
	assert.Len(t, fetches[0], 5, "expected keys de-duplicated within the batch")
	for i := 0; i < 10; i++ {
		assert.Equal(t, fmt.Sprintf("value-%d", i%5), results[i])
	}
}

func TestRepeatedLoadHitsCache(t *testing.T) {
	var mu sync.Mutex
	var fetches [][]int
	loader := newStringLoader(&fetches, &mu)

	first, err := loader.Load(7)
	require.NoError(t, err)

	second, err := loader.Load(7)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, fetches, 1)
	assert.Equal(t, []int{7}, fetches[0])
}

func TestThunksQueueBeforeResolving(t *testing.T) {
	var mu sync.Mutex
	var fetches [][]int
	loader := newStringLoader(&fetches, &mu)

	thunkA := loader.LoadThunk(1)
	thunkB := loader.LoadThunk(2)
	thunkC := loader.LoadThunk(1)

	a, err := thunkA()
	require.NoError(t, err)
	b, err := thunkB()
	require.NoError(t, err)
	c, err := thunkC()
	require.NoError(t, err)

	assert.Equal(t, "value-1", a)
	assert.Equal(t, "value-2", b)
	assert.Equal(t, a, c)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, fetches, 1)
	assert.Equal(t, []int{1, 2}, fetches[0], "keys keep first-requested order")
}

func TestBatchErrorFailsEveryKey(t *testing.T) {
	storeDown := errors.New("store unavailable")
	loader := New(Config[int, string]{
		Wait: time.Millisecond,
		Fetch: func(keys []int) ([]string, []error) {
			return nil, []error{storeDown}
		},
	})

	thunkA := loader.LoadThunk(1)
	thunkB := loader.LoadThunk(2)

	_, errA := thunkA()
	_, errB := thunkB()
	assert.ErrorIs(t, errA, storeDown)
	assert.ErrorIs(t, errB, storeDown)

	// Failed loads must not be cached; the next load refetches.
	called := false
	loader.fetch = func(keys []int) ([]string, []error) {
		called = true
		return []string{"ok"}, nil
	}
	value, err := loader.Load(1)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "ok", value)
}

func TestPerKeyErrors(t *testing.T) {
	missing := errors.New("not found")
	loader := New(Config[int, string]{
		Wait: time.Millisecond,
		Fetch: func(keys []int) ([]string, []error) {
			values := make([]string, len(keys))
			errs := make([]error, len(keys))
			for i, key := range keys {
				if key%2 == 0 {
					values[i] = fmt.Sprintf("value-%d", key)
				} else {
					errs[i] = missing
				}
			}
			return values, errs
		},
	})

	values, errs := loader.LoadAll([]int{2, 3, 4})
	assert.Equal(t, "value-2", values[0])
	assert.ErrorIs(t, errs[1], missing)
	assert.Equal(t, "value-4", values[2])
	assert.NoError(t, errs[0])
	assert.NoError(t, errs[2])
}

func TestMaxBatchSplitsFetches(t *testing.T) {
	var mu sync.Mutex
	var fetches [][]int
	loader := New(Config[int, string]{
		Wait:     5 * time.Millisecond,
		MaxBatch: 2,
		Fetch: func(keys []int) ([]string, []error) {
			mu.Lock()
			fetches = append(fetches, append([]int(nil), keys...))
			mu.Unlock()
			values := make([]string, len(keys))
			for i, key := range keys {
				values[i] = fmt.Sprintf("value-%d", key)
			}
			return values, nil
		},
	})

	thunks := make([]func() (string, error), 3)
	for i := range thunks {
		thunks[i] = loader.LoadThunk(i)
	}
	for i, thunk := range thunks {
		value, err := thunk()
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("value-%d", i), value)
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, fetches, 2)
	assert.Len(t, fetches[0], 2)
	assert.Len(t, fetches[1], 1)
}

func TestPrimeAndClear(t *testing.T) {
	var mu sync.Mutex
	var fetches [][]int
	loader := newStringLoader(&fetches, &mu)

	require.True(t, loader.Prime(1, "primed"))
	require.False(t, loader.Prime(1, "ignored"))

	value, err := loader.Load(1)
	require.NoError(t, err)
	assert.Equal(t, "primed", value)

	mu.Lock()
	assert.Empty(t, fetches, "primed key must not trigger a fetch")
	mu.Unlock()

	loader.Clear(1)
	value, err = loader.Load(1)
	require.NoError(t, err)
	assert.Equal(t, "value-1", value)
}

func TestTransform(t *testing.T) {
	var mu sync.Mutex
	var fetches [][]int
	loader := newStringLoader(&fetches, &mu)

	thunk := Transform(loader.LoadThunk(3), func(v string) int {
		return len(v)
	})

	length, err := thunk()
	require.NoError(t, err)
	assert.Equal(t, len("value-3"), length)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, fetches, 1, "transform must not refetch")
}

func TestHooksObserveBatchesAndCacheHits(t *testing.T) {
	var batches, cacheHits int
	loader := New(Config[int, string]{
		Wait: time.Millisecond,
		Fetch: func(keys []int) ([]string, []error) {
			values := make([]string, len(keys))
			return values, nil
		},
		Hooks: Hooks{
			OnBatch:    func(keys int) { batches += keys },
			OnCacheHit: func() { cacheHits++ },
		},
	})

	_, _ = loader.Load(1)
	_, _ = loader.Load(1)

	assert.Equal(t, 1, batches)
	assert.Equal(t, 1, cacheHits)
}
