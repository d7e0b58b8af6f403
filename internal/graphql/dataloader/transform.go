package dataloader

// Transform derives a thunk whose resolved value is fn applied to the
// source thunk's value. The underlying fetch runs at most once; errors
// pass through untouched.
func Transform[V, U any](thunk func() (V, error), fn func(V) U) func() (U, error) {
	return func() (U, error) {
		value, err := thunk()
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(value), nil
	}
}
