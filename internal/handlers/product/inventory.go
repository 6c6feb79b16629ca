package product

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
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ================== INVENTAIRE ==================

// UpdateStock ajuste le stock d'un produit par delta (réapprovisionnement
// ou correction) et trace le mouvement. Le stock ne descend jamais sous
// zéro : un delta négatif ne passe que si le stock suffit.
func UpdateStock(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var input struct {
		Delta  int    `json:"delta" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{"_id": productID}
	if input.Delta < 0 {
		// décrément conditionnel, même garde que pour une vente
		filter["stock"] = bson.M{"$gte": -input.Delta}
	}

	var updated models.Product
	err = database.Products.FindOneAndUpdate(
		ctx,
		filter,
		bson.M{
			"$inc": bson.M{"stock": input.Delta},
			"$set": bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		count, countErr := database.Products.CountDocuments(ctx, bson.M{"_id": productID})
		if countErr == nil && count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Stock insuffisant pour cet ajustement"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		log.Println("❌ Erreur ajustement stock:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	movementType := "adjustment"
	if input.Delta > 0 {
		movementType = "restock"
	}

	movement := models.StockMovement{
		ID:        primitive.NewObjectID(),
		ProductID: productID,
		Type:      movementType,
		Quantity:  input.Delta,
		PrevStock: updated.Stock - input.Delta,
		NewStock:  updated.Stock,
		Reason:    input.Reason,
		UserID:    c.GetString("user_id"),
		CreatedAt: time.Now(),
	}
	if _, err := database.MongoDB.Collection("stock_movements").InsertOne(ctx, movement); err != nil {
		// le stock est déjà ajusté, on signale mais on ne rollback pas
		log.Println("⚠️ Mouvement de stock non tracé:", err)
	}

	cache.InvalidateProductCache(productID)
	cache.InvalidateAllProducts()

	c.JSON(http.StatusOK, gin.H{
		"product":  updated,
		"movement": movement,
	})
}

// GetStockMovements renvoie l'historique des mouvements d'un produit,
// les plus récents d'abord.
func GetStockMovements(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"created_at": -1}).SetLimit(100)
	cursor, err := database.MongoDB.Collection("stock_movements").
		Find(ctx, bson.M{"product_id": productID}, opts)
	if err != nil {
		log.Println("❌ Erreur lecture mouvements:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}
	defer cursor.Close(ctx)

	movements := []models.StockMovement{}
	if err := cursor.All(ctx, &movements); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	c.JSON(http.StatusOK, movements)
}
