package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionTestRouter(captured *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/cart", CartSession(), func(c *gin.Context) {
		*captured = c.GetString("session_id")
		c.Status(http.StatusOK)
	})
	return r
}

func TestCartSessionGeneratesID(t *testing.T) {
	var sessionID string
	r := sessionTestRouter(&sessionID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, sessionID)
	require.NotEmpty(t, w.Result().Cookies(), "le cookie de session doit être posé")
}

func TestCartSessionIsStableAcrossRequests(t *testing.T) {
	var sessionID string
	r := sessionTestRouter(&sessionID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))
	first := sessionID
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	// même cookie → même identité de panier
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, first, sessionID)

	// sans cookie → nouvelle identité
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))
	assert.NotEqual(t, first, sessionID)
}

func TestCartSessionReadsSecretPerRequest(t *testing.T) {
	var sessionID string
	r := sessionTestRouter(&sessionID)

	t.Setenv("SESSION_SECRET", "secret-initial")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))
	first := sessionID
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	// le secret change (ex: .env chargé après l'init du package) : le
	// cookie signé avec l'ancien secret ne se décode plus
	t.Setenv("SESSION_SECRET", "secret-tourne")
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, first, sessionID)

	// retour au secret d'origine : la session d'origine redevient lisible
	t.Setenv("SESSION_SECRET", "secret-initial")
	req = httptest.NewRequest(http.MethodGet, "/cart", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, first, sessionID)
}
