package admin

import (
	"context"
	"log"
	"net/http"
	"time"

	"storefront_back_end/internal/cache"
	"storefront_back_end/internal/database"
	"storefront_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ================== SEED ==================

func sampleProducts() []models.Product {
	now := time.Now()
	specs := []struct {
		name        string
		description string
		price       float64
		category    string
		stock       int
		featured    bool
	}{
		{"Casque audio sans fil", "Casque Bluetooth avec réduction de bruit active, 30h d'autonomie.", 129.99, "electronics", 25, true},
		{"Montre connectée Sport", "Suivi d'activité, GPS intégré, étanche 50m.", 89.99, "electronics", 40, true},
		{"Sac à dos urbain", "Compartiment ordinateur 15\", tissu déperlant.", 49.90, "accessories", 60, false},
		{"Mug isotherme 450ml", "Garde vos boissons chaudes 6h, froides 12h.", 19.99, "home", 120, false},
		{"Clavier mécanique compact", "Switches tactiles, format 75%, rétroéclairage blanc.", 74.50, "electronics", 15, true},
		{"Lampe de bureau LED", "Température de couleur réglable, port USB-C.", 34.99, "home", 35, false},
		{"Gourde inox 1L", "Acier inoxydable brossé, bouchon sport.", 24.90, "accessories", 80, false},
		{"Enceinte portable", "Son 360°, étanche IPX7, 12h d'autonomie.", 59.99, "electronics", 8, true},
	}

	products := make([]models.Product, 0, len(specs))
	for _, s := range specs {
		products = append(products, models.Product{
			ID:          primitive.NewObjectID(),
			Name:        s.name,
			Description: s.description,
			Price:       s.price,
			Category:    s.category,
			Stock:       s.stock,
			Featured:    s.featured,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return products
}

// resetCollections liste tout ce que le reset forcé efface : catalogue,
// paniers, commandes, mouvements de stock et comptes utilisateurs.
// L'admin qui déclenche le reset perd aussi son compte — son JWT reste
// valable jusqu'à expiration mais il devra se réinscrire ensuite.
var resetCollections = []string{"products", "carts", "orders", "stock_movements", "users"}

// SeedDatabase insère le catalogue de démonstration. Sans ?reset=true,
// ne fait rien si des produits existent déjà ; avec, vide toutes les
// données boutique avant de réinsérer.
func SeedDatabase(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reset := c.Query("reset") == "true"

	if reset {
		for _, name := range resetCollections {
			if _, err := database.MongoDB.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
				log.Printf("❌ Erreur reset %s: %v", name, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur réinitialisation"})
				return
			}
		}
		log.Println("🧹 Données boutique réinitialisées")
	} else {
		count, err := database.Products.CountDocuments(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusOK, gin.H{
				"message": "Catalogue déjà initialisé",
				"count":   count,
			})
			return
		}
	}

	products := sampleProducts()
	docs := make([]interface{}, len(products))
	for i, p := range products {
		docs[i] = p
	}

	if _, err := database.Products.InsertMany(ctx, docs); err != nil {
		log.Println("❌ Erreur insertion seed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur insertion produits"})
		return
	}

	cache.InvalidateAllProducts()
	log.Printf("✅ %d produits de démonstration insérés", len(products))

	c.JSON(http.StatusCreated, gin.H{
		"message": "Catalogue de démonstration créé",
		"count":   len(products),
	})
}
