package rate

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCounter es la variante de un solo proceso, sobre go-cache.
// Cada item guarda su propia expiración, así que la ventana arranca en el primer hit.
type MemoryCounter struct {
	c      *gocache.Cache
	window time.Duration
}

// NewMemoryCounter crea un contador en memoria con ventana window.
func NewMemoryCounter(window time.Duration) *MemoryCounter {
	return &MemoryCounter{c: gocache.New(window, time.Minute), window: window}
}

var _ Counter = (*MemoryCounter)(nil)

func (m *MemoryCounter) Increment(_ context.Context, key string) (int64, error) {
	for {
		if err := m.c.Add(key, int64(1), m.window); err == nil {
			return 1, nil
		}
		n, err := m.c.IncrementInt64(key, 1)
		if err == nil {
			return n, nil
		}
		// la key expiró entre Add e Increment: reintentar
	}
}

func (m *MemoryCounter) Attempts(_ context.Context, key string) (int64, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return 0, nil
	}
	n, _ := v.(int64)
	return n, nil
}

func (m *MemoryCounter) RemainingWindow(_ context.Context, key string) (time.Duration, error) {
	_, exp, ok := m.c.GetWithExpiration(key)
	if !ok || exp.IsZero() {
		return 0, nil
	}
	if d := time.Until(exp); d > 0 {
		return d, nil
	}
	return 0, nil
}

func (m *MemoryCounter) Clear(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

func (m *MemoryCounter) Ping(context.Context) error { return nil }
