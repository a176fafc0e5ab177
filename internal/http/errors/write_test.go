package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/idlink/internal/auth"
	"github.com/dropDatabas3/idlink/internal/identity"
)

func TestFromError_Mapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: missing subject", identity.ErrInvalidAssertion), 422, "SOCIAL_LOGIN_FAILED"},
		{&identity.ProviderNotConnectedError{Provider: "github"}, 409, "PROVIDER_NOT_CONNECTED"},
		{identity.ErrNoRemainingAuthMethod, 409, "NO_REMAINING_AUTH_METHOD"},
		{&identity.ProviderAlreadyLinkedError{Provider: "github"}, 409, "PROVIDER_ALREADY_LINKED"},
		{&auth.TooManyAttemptsError{RetryAfter: time.Minute}, 429, "TOO_MANY_ATTEMPTS"},
		{auth.ErrInvalidCredentials, 401, "INVALID_CREDENTIALS"},
		{&auth.ValidationError{Field: "email"}, 400, "VALIDATION_ERROR"},
		{fmt.Errorf("%w: retries exhausted", identity.ErrTransient), 503, "TRANSIENT_FAILURE"},
		{fmt.Errorf("%w: facebook", identity.ErrProviderDisabled), 404, "PROVIDER_DISABLED"},
		{fmt.Errorf("boom"), 500, "INTERNAL_SERVER_ERROR"},
	}
	codes := map[string]bool{}
	for _, tc := range tests {
		app := FromError(tc.err)
		assert.Equal(t, tc.status, app.HTTPStatus, tc.err.Error())
		assert.Equal(t, tc.code, app.Code, tc.err.Error())
		codes[app.Code] = true
	}
	assert.Len(t, codes, len(tests), "codes must be distinct")
}

func TestWriteError_RetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodPost, "/", nil),
		ErrTooManyAttempts.WithCause(&auth.TooManyAttemptsError{RetryAfter: 90 * time.Second}))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "90", rec.Header().Get("Retry-After"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "TOO_MANY_ATTEMPTS", body["code"])
}

func TestWithDetail_DoesNotMutateBase(t *testing.T) {
	_ = ErrValidation.WithDetail("email")
	assert.Empty(t, ErrValidation.Detail)
}
