package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vanita/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, roles []string, ttl time.Duration) string {
	t.Helper()
	claims := &Claims{
		Mobile: "9876543210",
		UserID: "a1",
		Role:   roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
	require.NoError(t, err)
	return token
}

func okHandler(hit *bool) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		*hit = true
		w.WriteHeader(http.StatusOK)
	}
}

func TestAuthenticateRejectsMissingAndBadTokens(t *testing.T) {
	var hit bool
	handler := Authenticate(okHandler(&hit))

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	handler(w, req, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, []string{"admin"}, -time.Minute))
	handler(w, req, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.False(t, hit)
}

func TestAuthenticateAcceptsBearerAndCookie(t *testing.T) {
	token := mintToken(t, []string{"admin"}, time.Hour)

	var hit bool
	handler := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		hit = true
		userID, _ := r.Context().Value(globals.UserIDKey).(string)
		assert.Equal(t, "a1", userID)
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler(w, req, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, hit)

	hit = false
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	handler(w, req, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, hit)
}

func TestAdminOnlyRequiresAdminRole(t *testing.T) {
	var hit bool
	handler := AdminOnly(okHandler(&hit))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, []string{"viewer"}, time.Hour))
	handler(w, req, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, hit)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, []string{"admin"}, time.Hour))
	handler(w, req, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, hit)
}

func TestAuthDisabledBypass(t *testing.T) {
	t.Setenv("AUTH_DISABLED", "true")

	var hit bool
	handler := AdminOnly(okHandler(&hit))

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, hit)
}

func TestValidateJWT(t *testing.T) {
	token := mintToken(t, []string{"admin"}, time.Hour)

	claims, err := ValidateJWT("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "a1", claims.UserID)

	claims, err = ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", claims.Mobile)

	_, err = ValidateJWT("")
	assert.Error(t, err)
}
