package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wardrobe-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func setupIdentityRouter() *gin.Engine {
	r := gin.New()
	owned := r.Group("/api")
	owned.Use(IdentityMiddleware())
	owned.GET("/whoami", func(c *gin.Context) {
		ownerID, _ := c.Get("owner_id")
		isGuest, _ := c.Get("is_guest")
		c.JSON(http.StatusOK, gin.H{
			"owner_id": ownerID,
			"is_guest": isGuest,
		})
	})
	return r
}

func TestIdentityMiddlewareMintsGuestID(t *testing.T) {
	router := setupIdentityRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/whoami", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	echoed := w.Header().Get(GuestIDHeader)
	if _, err := uuid.Parse(echoed); err != nil {
		t.Fatalf("expected a uuid guest id in %s, got %q", GuestIDHeader, echoed)
	}
}

func TestIdentityMiddlewareReusesGuestID(t *testing.T) {
	router := setupIdentityRouter()
	guestID := utils.NewGuestID()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/whoami", nil)
	req.Header.Set(GuestIDHeader, guestID)
	router.ServeHTTP(w, req)

	if w.Header().Get(GuestIDHeader) != guestID {
		t.Errorf("expected guest id %s echoed back, got %s", guestID, w.Header().Get(GuestIDHeader))
	}
}

func TestIdentityMiddlewareReplacesMalformedGuestID(t *testing.T) {
	router := setupIdentityRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/whoami", nil)
	req.Header.Set(GuestIDHeader, "'; DROP TABLE carts; --")
	router.ServeHTTP(w, req)

	echoed := w.Header().Get(GuestIDHeader)
	if _, err := uuid.Parse(echoed); err != nil {
		t.Fatalf("malformed guest id should be replaced with a uuid, got %q", echoed)
	}
}

func TestIdentityMiddlewareBearerWins(t *testing.T) {
	router := setupIdentityRouter()

	userID := uuid.New()
	token, err := utils.GenerateToken(userID, "user@test.com", "customer")
	if err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(GuestIDHeader, utils.NewGuestID())
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get(GuestIDHeader) != "" {
		t.Error("authenticated responses must not echo a guest id")
	}
	if got := w.Body.String(); !strings.Contains(got, `"owner_id":"`+userID.String()+`"`) {
		t.Errorf("expected owner_id %s, got %s", userID, got)
	}
	if !strings.Contains(w.Body.String(), `"is_guest":false`) {
		t.Errorf("expected is_guest false, got %s", w.Body.String())
	}
}

// An invalid token is a hard failure, never a silent downgrade to guest.
func TestIdentityMiddlewareInvalidTokenNoGuestFallback(t *testing.T) {
	router := setupIdentityRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-valid-token")
	req.Header.Set(GuestIDHeader, utils.NewGuestID())
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d: %s", w.Code, w.Body.String())
	}
}
