package cache

import (
	"context"
	"encoding/json"
	"time"

	"storefront_back_end/internal/database"
	"storefront_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	ProductCacheTTL     = 10 * time.Minute
	ProductListCacheTTL = 5 * time.Minute
)

const productListKey = "products:all"

// GetProductFromCache récupère un produit depuis Redis ou MongoDB
func GetProductFromCache(productID primitive.ObjectID) (*models.Product, error) {
	ctx := context.Background()
	key := "product:" + productID.Hex()

	// 1. Essayer le cache Redis
	data, err := database.Redis.Get(ctx, key).Result()
	if err == nil {
		var product models.Product
		if json.Unmarshal([]byte(data), &product) == nil {
			return &product, nil
		}
	}

	// 2. Récupérer de MongoDB
	var product models.Product
	err = database.MongoDB.Collection("products").
		FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		return nil, err
	}

	// 3. Mettre en cache
	jsonData, _ := json.Marshal(product)
	database.Redis.Set(ctx, key, jsonData, ProductCacheTTL)

	return &product, nil
}

// GetProductListFromCache retourne la liste complète du catalogue si
// elle est en cache (utilisée uniquement pour la requête sans filtres)
func GetProductListFromCache() ([]models.Product, bool) {
	ctx := context.Background()

	data, err := database.Redis.Get(ctx, productListKey).Result()
	if err != nil || data == "" {
		return nil, false
	}

	var products []models.Product
	if err := json.Unmarshal([]byte(data), &products); err != nil {
		return nil, false
	}
	return products, true
}

// SetProductListInCache met la liste complète du catalogue en cache
func SetProductListInCache(products []models.Product) {
	ctx := context.Background()
	jsonData, err := json.Marshal(products)
	if err != nil {
		return
	}
	database.Redis.Set(ctx, productListKey, jsonData, ProductListCacheTTL)
}

// InvalidateProductCache invalide le cache d'un produit et la liste
func InvalidateProductCache(productID primitive.ObjectID) {
	ctx := context.Background()
	database.Redis.Del(ctx, "product:"+productID.Hex(), productListKey)
}

// InvalidateAllProducts vide tout le cache catalogue (seed/reset)
func InvalidateAllProducts() {
	ctx := context.Background()
	database.Redis.Del(ctx, productListKey)
}

// IsNotFound indique si une erreur Mongo correspond à un document absent
func IsNotFound(err error) bool {
	return err == mongo.ErrNoDocuments
}
