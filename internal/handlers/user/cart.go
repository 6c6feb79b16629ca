package user

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"storefront_back_end/internal/checkout"
	"storefront_back_end/internal/database"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ================== PANIER ==================

func cartCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// publie un événement sur Redis pour la synchro websocket
func publishCartEvent(sessionID, event string) {
	if database.Redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := database.Redis.Publish(ctx, "cart:"+sessionID, event).Err(); err != nil {
		log.Println("⚠️ Publish panier échoué:", err)
	}
}

func cartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, checkout.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
	case errors.Is(err, checkout.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": "Stock insuffisant"})
	case errors.Is(err, checkout.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
	default:
		log.Println("❌ Erreur panier:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
	}
}

// GetCart renvoie le panier résolu (lignes valorisées + totaux).
func GetCart(c *gin.Context) {
	sessionID := c.GetString("session_id")

	ctx, cancel := cartCtx()
	defer cancel()

	items, err := database.Checkout.ResolveCart(ctx, sessionID)
	if err != nil {
		cartError(c, err)
		return
	}

	subtotal := checkout.Subtotal(items)

	c.JSON(http.StatusOK, gin.H{
		"sessionId": sessionID,
		"items":     items,
		"subtotal":  subtotal,
		"shipping":  checkout.ShippingFee(subtotal),
		"total":     checkout.Total(subtotal),
	})
}

func AddToCart(c *gin.Context) {
	sessionID := c.GetString("session_id")

	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	ctx, cancel := cartCtx()
	defer cancel()

	cart, err := database.Checkout.AddItem(ctx, sessionID, productID, input.Quantity)
	if err != nil {
		cartError(c, err)
		return
	}

	publishCartEvent(sessionID, "updated")
	c.JSON(http.StatusOK, gin.H{"message": "Produit ajouté au panier", "cart": cart})
}

func UpdateCartItem(c *gin.Context) {
	sessionID := c.GetString("session_id")

	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	ctx, cancel := cartCtx()
	defer cancel()

	cart, err := database.Checkout.UpdateQuantity(ctx, sessionID, productID, input.Quantity)
	if err != nil {
		cartError(c, err)
		return
	}

	publishCartEvent(sessionID, "updated")
	c.JSON(http.StatusOK, gin.H{"message": "Panier mis à jour", "cart": cart})
}

func RemoveFromCart(c *gin.Context) {
	sessionID := c.GetString("session_id")

	productID, err := primitive.ObjectIDFromHex(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	ctx, cancel := cartCtx()
	defer cancel()

	cart, err := database.Checkout.RemoveItem(ctx, sessionID, productID)
	if err != nil {
		cartError(c, err)
		return
	}

	publishCartEvent(sessionID, "updated")
	c.JSON(http.StatusOK, gin.H{"message": "Produit retiré du panier", "cart": cart})
}

func ClearCart(c *gin.Context) {
	sessionID := c.GetString("session_id")

	ctx, cancel := cartCtx()
	defer cancel()

	if err := database.Checkout.ClearCart(ctx, sessionID); err != nil {
		cartError(c, err)
		return
	}

	publishCartEvent(sessionID, "cleared")
	c.JSON(http.StatusOK, gin.H{"message": "Panier vidé"})
}
