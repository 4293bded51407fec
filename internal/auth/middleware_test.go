package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func authContext(authorization string) echo.Context {
	req := httptest.NewRequest(http.MethodPatch, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestMiddlewarePutsUserIDOnContext(t *testing.T) {
	t.Setenv("JWT_SECRET", "middleware-test-secret")

	userID := uuid.New()
	token, err := generateToken(userID)
	if err != nil {
		t.Fatalf("generateToken: %v", err)
	}

	called := false
	handler := Middleware(func(c echo.Context) error {
		called = true
		got, err := UserIDFromContext(c)
		if err != nil {
			t.Fatalf("UserIDFromContext: %v", err)
		}
		if got != userID {
			t.Errorf("got user %s, want %s", got, userID)
		}
		return nil
	})

	if err := handler(authContext("Bearer " + token)); err != nil {
		t.Fatalf("middleware rejected a valid token: %v", err)
	}
	if !called {
		t.Fatal("next handler was not called")
	}
}

func TestMiddlewareRejectsBadTokens(t *testing.T) {
	t.Setenv("JWT_SECRET", "middleware-test-secret")

	next := func(c echo.Context) error { return nil }

	for name, header := range map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc123",
		"garbage token":  "Bearer not-a-jwt",
	} {
		err := Middleware(next)(authContext(header))
		httpErr, ok := err.(*echo.HTTPError)
		if !ok {
			t.Errorf("%s: expected an HTTP error, got %v", name, err)
			continue
		}
		if httpErr.Code != http.StatusUnauthorized {
			t.Errorf("%s: got status %d, want 401", name, httpErr.Code)
		}
	}
}

func TestUserIDFromContextWithoutMiddleware(t *testing.T) {
	if _, err := UserIDFromContext(authContext("")); err == nil {
		t.Fatal("expected an error when no user is set")
	}
}
