package identity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAssertion: datos del provider incompletos o malformados.
	ErrInvalidAssertion = errors.New("identity: invalid provider assertion")

	// ErrProviderDisabled: provider ausente o deshabilitado en la configuración.
	ErrProviderDisabled = errors.New("identity: provider disabled")

	// ErrProviderNotConnected: la cuenta no tiene identidad para ese provider.
	// Se retorna envuelto en *ProviderNotConnectedError.
	ErrProviderNotConnected = errors.New("identity: provider not connected")

	// ErrNoRemainingAuthMethod: desvincular dejaría la cuenta sin forma de login.
	ErrNoRemainingAuthMethod = errors.New("identity: no remaining auth method")

	// ErrProviderAlreadyLinked: la cuenta del email ya tiene otra identidad de ese provider.
	// Se retorna envuelto en *ProviderAlreadyLinkedError.
	ErrProviderAlreadyLinked = errors.New("identity: provider already linked")

	// ErrTransient: se agotaron los reintentos por conflictos de unicidad.
	ErrTransient = errors.New("identity: transient failure")
)

// ProviderNotConnectedError nombra el provider que no estaba vinculado.
type ProviderNotConnectedError struct {
	Provider string
}

func (e *ProviderNotConnectedError) Error() string {
	return fmt.Sprintf("identity: provider %q not connected", e.Provider)
}

func (e *ProviderNotConnectedError) Is(target error) bool {
	return target == ErrProviderNotConnected
}

// ProviderAlreadyLinkedError nombra el provider ya ocupado en la cuenta.
type ProviderAlreadyLinkedError struct {
	Provider string
}

func (e *ProviderAlreadyLinkedError) Error() string {
	return fmt.Sprintf("identity: provider %q already linked with another subject", e.Provider)
}

func (e *ProviderAlreadyLinkedError) Is(target error) bool {
	return target == ErrProviderAlreadyLinked
}
