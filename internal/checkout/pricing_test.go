package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSubtotal(t *testing.T) {
	items := []PricedItem{
		{ProductID: primitive.NewObjectID(), Name: "Casque", Price: 20.00, Quantity: 3},
		{ProductID: primitive.NewObjectID(), Name: "Mug", Price: 5.00, Quantity: 2},
	}
	assert.InDelta(t, 70.00, Subtotal(items), 0.001)
	assert.Zero(t, Subtotal(nil))
}

func TestShippingFee(t *testing.T) {
	// au-dessus du seuil : livraison offerte
	assert.Equal(t, 0.0, ShippingFee(60.00))
	assert.Equal(t, 0.0, ShippingFee(50.01))

	// seuil inclus : frais forfaitaires
	assert.Equal(t, 5.99, ShippingFee(50.00))
	assert.Equal(t, 5.99, ShippingFee(10.00))
	assert.Equal(t, 5.99, ShippingFee(0))
}

func TestTotal(t *testing.T) {
	assert.InDelta(t, 60.00, Total(60.00), 0.001)
	assert.InDelta(t, 15.99, Total(10.00), 0.001)
	assert.InDelta(t, 55.99, Total(50.00), 0.001)
}

func TestAmountInCents(t *testing.T) {
	assert.Equal(t, int64(1599), AmountInCents(15.99))
	assert.Equal(t, int64(6000), AmountInCents(60.00))
	// arrondi bancaire classique sur les flottants
	assert.Equal(t, int64(1005), AmountInCents(10.049999999))
}
