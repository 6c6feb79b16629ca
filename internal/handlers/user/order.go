package user

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"storefront_back_end/internal/checkout"
	"storefront_back_end/internal/database"
	"storefront_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ================== COMMANDES ==================

// CreateOrder passe une commande directe (sans Stripe) depuis le panier
// de session. La commande naît en "pending".
func CreateOrder(c *gin.Context) {
	userID := c.GetString("user_id")
	sessionID := c.GetString("session_id")

	var input struct {
		ShippingAddress models.ShippingAddress `json:"shippingAddress" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Adresse de livraison invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	order, err := database.Checkout.CreateOrder(ctx, checkout.OrderRequest{
		SessionID: sessionID,
		UserID:    userID,
		Address:   input.ShippingAddress,
		Status:    models.OrderStatusPending,
	})
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Le panier est vide"})
		case errors.Is(err, checkout.ErrInsufficientStock):
			c.JSON(http.StatusConflict, gin.H{"error": "Stock insuffisant pour un des produits"})
		default:
			log.Println("❌ Erreur création commande:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création commande"})
		}
		return
	}

	publishCartEvent(sessionID, "cleared")
	c.JSON(http.StatusCreated, order)
}

// GetMyOrders liste les commandes de l'utilisateur connecté, les plus
// récentes d'abord. Un admin voit toutes les commandes.
func GetMyOrders(c *gin.Context) {
	filter := bson.M{"user_id": c.GetString("user_id")}
	if c.GetString("role") == "admin" {
		filter = bson.M{}
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := database.Orders.Find(ctx, filter, opts)
	if err != nil {
		log.Println("❌ Erreur lecture commandes:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GetOrderByID renvoie une commande. Un client ne voit que les siennes,
// un admin peut tout consulter.
func GetOrderByID(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var order models.Order
	if err := database.Orders.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	if order.UserID != c.GetString("user_id") && c.GetString("role") != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès refusé"})
		return
	}

	c.JSON(http.StatusOK, order)
}
