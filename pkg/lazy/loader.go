package lazy

import (
	"fmt"
	"sync"
)

// Loader defers construction of a value until first use and caches the
// result. Useful in CLI wiring where most invocations need only a subset of
// the dependency graph.
type Loader[T any] struct {
	provider func() (T, error)
	once     sync.Once
	value    T
	err      error
}

func New[T any](provider func() (T, error)) *Loader[T] {
	return &Loader[T]{provider: provider}
}

func (l *Loader[T]) Load() (T, error) {
	l.once.Do(func() {
		l.value, l.err = l.provider()
		if l.err != nil {
			l.err = fmt.Errorf("load %T: %w", l.value, l.err)
		}
	})

	return l.value, l.err
}

func (l *Loader[T]) MustLoad() T {
	value, err := l.Load()
	if err != nil {
		panic(err)
	}

	return value
}
