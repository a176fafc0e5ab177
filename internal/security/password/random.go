package password

import (
	"crypto/rand"
	"encoding/base64"
)

// Random genera un secreto de n bytes aleatorios codificado en base64url.
// Se usa para cuentas creadas por login social: el hash existe pero nadie
// conoce la password.
func Random(n int) (string, error) {
	if n <= 0 {
		n = 32
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
