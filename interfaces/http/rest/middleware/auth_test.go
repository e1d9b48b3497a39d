package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"worldloom-backend/pkg/auth"
)

const testSecret = "middleware-test-secret"

func newTestValidator(t *testing.T) *auth.JWTValidator {
	t.Helper()
	validator, err := auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     testSecret,
		Issuer:        "worldloom-test",
	})
	require.NoError(t, err)
	return validator
}

func signToken(t *testing.T, userID, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "worldloom-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// captureUser returns a handler that records the identity the middleware
// stored in the request context.
func captureUser(user *auth.UserContext, fail *error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, err := auth.GetUserFromContext(r.Context())
		*user = got
		*fail = err
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticateStoresUserInContext(t *testing.T) {
	var user auth.UserContext
	var ctxErr error
	handler := Authenticate(newTestValidator(t), zap.NewNop())(captureUser(&user, &ctxErr))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1", "mira@example.com"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NoError(t, ctxErr)
	assert.Equal(t, "user-1", user.UserID)
	assert.Equal(t, "mira@example.com", user.Email)
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	handler := Authenticate(newTestValidator(t), zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestStaticUserInjectsIdentity(t *testing.T) {
	var user auth.UserContext
	var ctxErr error
	handler := StaticUser("local-dev")(captureUser(&user, &ctxErr))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NoError(t, ctxErr)
	assert.Equal(t, "local-dev", user.UserID)
}
