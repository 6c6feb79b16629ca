package middleware

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	sessionName   = "storefront_session"
	sessionIDKey  = "session_id"
	sessionMaxAge = 86400 * 30 // 30 jours, comme le panier
)

// sessionStore se construit à chaque requête : SESSION_SECRET est lu
// après le chargement du .env, pas au chargement du package.
func sessionStore() *sessions.CookieStore {
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "storefront_dev_secret"
	}
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(sessionMaxAge)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   false, // false en dev, true en prod
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// CartSession attache à la requête l'identité de session anonyme du
// panier. Elle est distincte de l'identité authentifiée (JWT) : un
// visiteur sans compte a un panier, et le cookie survit au login.
// L'identifiant est généré paresseusement à la première visite.
func CartSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		store := sessionStore()
		session, err := store.Get(c.Request, sessionName)
		if err != nil {
			// Cookie corrompu : on repart sur une session neuve
			session, _ = store.New(c.Request, sessionName)
		}

		id, ok := session.Values[sessionIDKey].(string)
		if !ok || id == "" {
			id = uuid.NewString()
			session.Values[sessionIDKey] = id
			if err := session.Save(c.Request, c.Writer); err != nil {
				log.Printf("⚠️ Erreur sauvegarde cookie session: %v", err)
			}
		}

		c.Set("session_id", id)
		c.Next()
	}
}
