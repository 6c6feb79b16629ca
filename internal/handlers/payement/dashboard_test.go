package payement

import (
	"testing"

	"storefront_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSumOrderTotalsCountsEveryStatus(t *testing.T) {
	orders := []models.Order{
		{Total: 60.00, Status: models.OrderStatusProcessing},
		{Total: 15.99, Status: models.OrderStatusDelivered},
		{Total: 25.50, Status: models.OrderStatusCancelled},
	}

	// une commande annulée compte quand même dans le chiffre d'affaires
	assert.InDelta(t, 101.49, sumOrderTotals(orders), 0.001)
	assert.Zero(t, sumOrderTotals(nil))
}

func TestRevenueByCategoriesUsesFrozenPrices(t *testing.T) {
	casqueID := primitive.NewObjectID()
	mugID := primitive.NewObjectID()
	fantomeID := primitive.NewObjectID()

	categories := map[primitive.ObjectID]string{
		casqueID: "electronics",
		mugID:    "home",
	}

	orders := []models.Order{
		{
			Status: models.OrderStatusProcessing,
			Items: []models.OrderItem{
				// prix figé à la commande, différent du prix catalogue actuel
				{ProductID: casqueID, Price: 100.00, Quantity: 2},
				{ProductID: mugID, Price: 10.00, Quantity: 1},
			},
		},
		{
			Status: models.OrderStatusCancelled,
			Items: []models.OrderItem{
				{ProductID: casqueID, Price: 100.00, Quantity: 1},
			},
		},
		{
			Status: models.OrderStatusDelivered,
			Items: []models.OrderItem{
				// produit supprimé du catalogue depuis
				{ProductID: fantomeID, Price: 5.00, Quantity: 2},
			},
		},
	}

	result := revenueByCategories(orders, categories)
	require.Len(t, result, 3)

	// trié par chiffre d'affaires décroissant, annulée incluse
	assert.Equal(t, "electronics", result[0].Category)
	assert.InDelta(t, 300.00, result[0].Revenue, 0.001)

	assert.Equal(t, "home", result[1].Category)
	assert.InDelta(t, 10.00, result[1].Revenue, 0.001)

	assert.Equal(t, "inconnue", result[2].Category)
	assert.InDelta(t, 10.00, result[2].Revenue, 0.001)
}
