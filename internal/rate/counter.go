// Package rate implementa contadores de intentos compartidos entre procesos.
//
// Un Counter es una ventana fija que arranca con el primer hit: Increment crea
// la key con TTL=window y las siguientes llamadas solo suman. Cuando el TTL
// vence la key desaparece y el conteo vuelve a cero.
package rate

import (
	"context"
	"time"
)

// Counter es el estado compartido que usa el guard de login.
type Counter interface {
	// Increment suma un hit y retorna el total dentro de la ventana actual.
	Increment(ctx context.Context, key string) (int64, error)
	// Attempts retorna los hits actuales sin modificarlos.
	Attempts(ctx context.Context, key string) (int64, error)
	// RemainingWindow retorna cuánto falta para que la ventana expire (0 si no hay).
	RemainingWindow(ctx context.Context, key string) (time.Duration, error)
	// Clear borra el contador.
	Clear(ctx context.Context, key string) error
	// Ping verifica que el backend responda.
	Ping(ctx context.Context) error
}
