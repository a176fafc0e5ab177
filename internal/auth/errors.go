package auth

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	// ErrInvalidCredentials es deliberadamente genérico: no distingue
	// "no existe la cuenta" de "password incorrecta".
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrTooManyAttempts se retorna envuelto en *TooManyAttemptsError.
	ErrTooManyAttempts = errors.New("auth: too many attempts")

	// ErrEmailTaken: registro con un email que ya tiene cuenta.
	ErrEmailTaken = errors.New("auth: email already registered")
)

// TooManyAttemptsError lleva el tiempo hasta que la throttle key se libere.
type TooManyAttemptsError struct {
	RetryAfter time.Duration
}

func (e *TooManyAttemptsError) Error() string {
	return fmt.Sprintf("auth: too many attempts, retry in %ds", e.Seconds())
}

func (e *TooManyAttemptsError) Is(target error) bool { return target == ErrTooManyAttempts }

// Seconds redondea hacia arriba; nunca retorna menos de 1.
func (e *TooManyAttemptsError) Seconds() int {
	s := int(math.Ceil(e.RetryAfter.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}

// ValidationError indica un campo de entrada inválido.
type ValidationError struct {
	Field   string
	Reasons []string
}

func (e *ValidationError) Error() string {
	if len(e.Reasons) == 0 {
		return fmt.Sprintf("auth: invalid %s", e.Field)
	}
	return fmt.Sprintf("auth: invalid %s: %s", e.Field, strings.Join(e.Reasons, ","))
}
