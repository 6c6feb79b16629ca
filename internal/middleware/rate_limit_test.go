package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// Redis n'est pas connecté dans les tests : si le limiteur consultait
// le quota sur une lecture ou l'upgrade websocket, la requête planterait.
func TestCartRateLimitSkipsReads(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	limited := r.Group("/cart", func(c *gin.Context) {
		c.Set("session_id", "sess-lecture")
		c.Next()
	}, CartRateLimit())
	limited.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	limited.GET("/ws", func(c *gin.Context) { c.Status(http.StatusOK) })
	limited.DELETE("/abc", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/cart", "/cart/ws"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	// retirer un article n'est pas un ajout, pas de quota non plus
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/cart/abc", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
