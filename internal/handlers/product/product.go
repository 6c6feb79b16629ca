package product

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"storefront_back_end/internal/cache"
	"storefront_back_end/internal/database"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ================== CATALOGUE ==================

// GetProducts liste le catalogue avec filtres optionnels. La liste
// complète (sans filtre ni pagination) passe par le cache Redis.
func GetProducts(c *gin.Context) {
	filter := bson.M{}
	filtered := false

	if category := c.Query("category"); category != "" {
		filter["category"] = category
		filtered = true
	}
	if featured := c.Query("featured"); featured == "true" {
		filter["featured"] = true
		filtered = true
	}

	priceFilter := bson.M{}
	if minPrice := c.Query("minPrice"); minPrice != "" {
		v, err := strconv.ParseFloat(minPrice, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "minPrice invalide"})
			return
		}
		priceFilter["$gte"] = v
		filtered = true
	}
	if maxPrice := c.Query("maxPrice"); maxPrice != "" {
		v, err := strconv.ParseFloat(maxPrice, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "maxPrice invalide"})
			return
		}
		priceFilter["$lte"] = v
		filtered = true
	}
	if len(priceFilter) > 0 {
		filter["price"] = priceFilter
	}

	sort := bson.M{"created_at": -1}
	switch c.Query("sort") {
	case "", "newest":
	case "price-asc":
		sort = bson.M{"price": 1}
		filtered = true
	case "price-desc":
		sort = bson.M{"price": -1}
		filtered = true
	case "name-asc":
		sort = bson.M{"name": 1}
		filtered = true
	case "name-desc":
		sort = bson.M{"name": -1}
		filtered = true
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tri inconnu"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if limit < 0 {
		limit = 0
	}
	if page > 1 || limit > 0 {
		filtered = true
	}

	// Cache uniquement la liste complète, les combinaisons filtrées
	// sont trop nombreuses pour valoir une clé chacune
	if !filtered {
		if products, ok := cache.GetProductListFromCache(); ok {
			c.JSON(http.StatusOK, products)
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(sort)
	if limit > 0 {
		opts.SetSkip(int64((page - 1) * limit)).SetLimit(int64(limit))
	}

	cursor, err := database.Products.Find(ctx, filter, opts)
	if err != nil {
		log.Println("❌ Erreur lecture produits:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	if !filtered {
		cache.SetProductListInCache(products)
	}

	c.JSON(http.StatusOK, products)
}

func GetProductByID(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	product, err := cache.GetProductFromCache(productID)
	if err != nil {
		if cache.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
			return
		}
		log.Println("❌ Erreur lecture produit:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// ================== ADMIN ==================

type productInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Category    string  `json:"category" binding:"required"`
	Stock       int     `json:"stock" binding:"min=0"`
	Featured    bool    `json:"featured"`
	ImageURL    string  `json:"image"`
}

func CreateProduct(c *gin.Context) {
	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données produit invalides", "details": err.Error()})
		return
	}

	now := time.Now()
	product := models.Product{
		ID:          primitive.NewObjectID(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Stock:       input.Stock,
		Featured:    input.Featured,
		ImageURL:    input.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := database.Products.InsertOne(ctx, product); err != nil {
		log.Println("❌ Erreur création produit:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit"})
		return
	}

	cache.InvalidateAllProducts()
	c.JSON(http.StatusCreated, product)
}

func UpdateProduct(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données produit invalides", "details": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":        input.Name,
		"description": input.Description,
		"price":       input.Price,
		"category":    input.Category,
		"stock":       input.Stock,
		"featured":    input.Featured,
		"image":       input.ImageURL,
		"updated_at":  time.Now(),
	}}

	var updated models.Product
	err = database.Products.FindOneAndUpdate(
		ctx,
		bson.M{"_id": productID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		log.Println("❌ Erreur mise à jour produit:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	cache.InvalidateProductCache(productID)
	cache.InvalidateAllProducts()
	c.JSON(http.StatusOK, updated)
}

func DeleteProduct(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := database.Products.DeleteOne(ctx, bson.M{"_id": productID})
	if err != nil {
		log.Println("❌ Erreur suppression produit:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression produit"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	cache.InvalidateProductCache(productID)
	cache.InvalidateAllProducts()
	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé"})
}

// UploadProductImage stocke l'image sur MinIO puis enregistre son URL
// sur le produit.
func UploadProductImage(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier image manquant"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	url, err := services.UploadProductImage(ctx, productID.Hex(), file)
	if err != nil {
		log.Println("❌ Erreur upload MinIO:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload image"})
		return
	}

	res, err := database.Products.UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{"image": url, "updated_at": time.Now()}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	cache.InvalidateProductCache(productID)
	cache.InvalidateAllProducts()
	c.JSON(http.StatusOK, gin.H{"message": "Image enregistrée", "url": url})
}

// GetProductImageURL renvoie une URL signée temporaire vers l'image du
// produit, pour servir les images d'un bucket privé.
func GetProductImageURL(c *gin.Context) {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	product, err := cache.GetProductFromCache(productID)
	if err != nil {
		if cache.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}
	if product.ImageURL == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ce produit n'a pas d'image"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	signed, err := services.GenerateSignedURL(ctx, product.ImageURL, 15*time.Minute)
	if err != nil {
		log.Println("❌ Erreur URL signée:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signed})
}
