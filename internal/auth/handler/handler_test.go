package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utpal16raj09/flfe/internal/auth/handler"
	"github.com/utpal16raj09/flfe/internal/auth/issuer"
	"github.com/utpal16raj09/flfe/internal/auth/provider"
	"github.com/utpal16raj09/flfe/internal/auth/reconciler"
	"github.com/utpal16raj09/flfe/internal/middleware"
	"github.com/utpal16raj09/flfe/internal/token"
	"github.com/utpal16raj09/flfe/internal/user"
)

func newRouter(t *testing.T) (*gin.Engine, *user.MemoryStore, *token.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := token.NewService([]byte("test-signing-key-at-least-32-bytes!!"), "flfe-test", time.Hour)
	require.NoError(t, err)

	store := user.NewMemoryStore()
	rec := reconciler.New(store, nil)
	svc := issuer.New(store, tokens, rec, nil)

	h := handler.NewHandler(provider.NewRegistry(), nil, svc, "http://localhost:3000/oauth/callback")

	router := gin.New()
	gate := middleware.NewAuthGate(tokens, store)
	router.Use(middleware.GinAuthenticate(gate))

	authed := router.Group("/api")
	authed.Use(middleware.RequireAuth())

	h.RegisterRoutes(router, authed)
	return router, store, tokens
}

func doJSON(router *gin.Engine, method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSignupEndpoint(t *testing.T) {
	t.Parallel()
	router, _, tokens := newRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/auth/signup",
		`{"email":"ann@x.com","name":"Ann","password":"password1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var session issuer.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "ann@x.com", session.Email)
	assert.Equal(t, user.RoleUser, session.Role)

	claims, err := tokens.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", claims.Subject)

	t.Run("duplicate yields conflict", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/api/auth/signup",
			`{"email":"ann@x.com","name":"Ann","password":"password1"}`, "")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("short password rejected", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/api/auth/signup",
			`{"email":"bob@x.com","name":"Bob","password":"short"}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid payload rejected", func(t *testing.T) {
		for _, body := range []string{
			``,
			`{}`,
			`{"email":"not-an-email","name":"Bob","password":"password1"}`,
			`{"email":"bob@x.com","password":"password1"}`,
		} {
			rec := doJSON(router, http.MethodPost, "/api/auth/signup", body, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		}
	})
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()
	router, _, _ := newRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/auth/signup",
		`{"email":"ann@x.com","name":"Ann","password":"password1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("valid credentials", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/api/auth/login",
			`{"email":"ann@x.com","password":"password1"}`, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var session issuer.Session
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
		assert.NotEmpty(t, session.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/api/auth/login",
			`{"email":"ann@x.com","password":"wrongpass"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/api/auth/login",
			`{"email":"ghost@x.com","password":"password1"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestMeEndpoint(t *testing.T) {
	t.Parallel()
	router, store, tokens := newRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/auth/signup",
		`{"email":"ann@x.com","name":"Ann","password":"password1"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var session issuer.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))

	t.Run("returns a fresh session", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet, "/api/auth/me", "", session.Token)
		require.Equal(t, http.StatusOK, rec.Code)

		var fresh issuer.Session
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fresh))
		assert.Equal(t, "ann@x.com", fresh.Email)

		claims, err := tokens.Verify(fresh.Token)
		require.NoError(t, err)
		assert.Equal(t, "ann@x.com", claims.Subject)
	})

	t.Run("anonymous is rejected", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet, "/api/auth/me", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("stale token for a deleted account", func(t *testing.T) {
		u, err := store.FindByEmail(context.Background(), "ann@x.com")
		require.NoError(t, err)
		require.NoError(t, store.Delete(context.Background(), u.ID))

		rec := doJSON(router, http.MethodGet, "/api/auth/me", "", session.Token)
		// The gate downgrades the unknown subject to anonymous before the
		// handler is reached.
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
