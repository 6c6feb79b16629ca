package payement

import (
	"context"
	"log"
	"net/http"
	"sort"
	"time"

	"storefront_back_end/internal/database"
	"storefront_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ================== DASHBOARD ADMIN ==================

// GetDashboardStats agrège les chiffres clés de la boutique : compteurs,
// chiffre d'affaires sur TOUTES les commandes (prix figés, statut
// indifférent), dernières commandes et produits en stock faible.
func GetDashboardStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	productCount, err := database.Products.CountDocuments(ctx, bson.M{})
	if err != nil {
		log.Println("❌ Erreur comptage produits:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	userCount, err := database.MongoDB.Collection("users").CountDocuments(ctx, bson.M{})
	if err != nil {
		log.Println("❌ Erreur comptage utilisateurs:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	orders, err := fetchAllOrders(ctx)
	if err != nil {
		log.Println("❌ Erreur lecture commandes:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	categories, err := loadProductCategories(ctx)
	if err != nil {
		log.Println("❌ Erreur lecture catégories:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	lowStock, err := fetchLowStockProducts(ctx, 10, 5)
	if err != nil {
		log.Println("❌ Erreur stock faible:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	recent := orders
	if len(recent) > 5 {
		recent = recent[:5]
	}

	c.JSON(http.StatusOK, gin.H{
		"counts": gin.H{
			"products": productCount,
			"orders":   len(orders),
			"users":    userCount,
		},
		"totalRevenue":      sumOrderTotals(orders),
		"revenueByCategory": revenueByCategories(orders, categories),
		"recentOrders":      recent,
		"lowStockProducts":  lowStock,
	})
}

// sumOrderTotals additionne le total de toutes les commandes, statut
// compris : une commande annulée compte dans le chiffre d'affaires.
func sumOrderTotals(orders []models.Order) float64 {
	var total float64
	for _, o := range orders {
		total += o.Total
	}
	return total
}

type categoryRevenue struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
}

// revenueByCategories ventile le chiffre d'affaires par catégorie en
// valorisant chaque ligne à son prix figé dans la commande. Les lignes
// dont le produit a disparu du catalogue tombent dans "inconnue".
func revenueByCategories(orders []models.Order, categories map[primitive.ObjectID]string) []categoryRevenue {
	byCategory := map[string]float64{}
	for _, o := range orders {
		for _, item := range o.Items {
			category, ok := categories[item.ProductID]
			if !ok || category == "" {
				category = "inconnue"
			}
			byCategory[category] += item.Price * float64(item.Quantity)
		}
	}

	result := make([]categoryRevenue, 0, len(byCategory))
	for category, revenue := range byCategory {
		result = append(result, categoryRevenue{Category: category, Revenue: revenue})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Revenue != result[j].Revenue {
			return result[i].Revenue > result[j].Revenue
		}
		return result[i].Category < result[j].Category
	})
	return result
}

// fetchAllOrders charge toutes les commandes, les plus récentes d'abord.
// Scan complet assumé : volumétrie de petite boutique.
func fetchAllOrders(ctx context.Context) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := database.Orders.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func loadProductCategories(ctx context.Context) (map[primitive.ObjectID]string, error) {
	cursor, err := database.Products.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"category": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}

	categories := make(map[primitive.ObjectID]string, len(products))
	for _, p := range products {
		categories[p.ID] = p.Category
	}
	return categories, nil
}

func fetchLowStockProducts(ctx context.Context, threshold int, limit int64) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.M{"stock": 1}).SetLimit(limit)
	cursor, err := database.Products.Find(ctx, bson.M{"stock": bson.M{"$lt": threshold}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}
