package utils

import (
	"fmt"
	"testing"

	"storefront_back_end/internal/models"

	"github.com/stretchr/testify/assert"
)

func sampleOrder(shipping float64) *models.Order {
	return &models.Order{
		Items: []models.OrderItem{
			{Name: "Casque audio", Price: 129.99, Quantity: 1},
			{Name: "Mug isotherme", Price: 19.99, Quantity: 2},
		},
		Subtotal: 169.97,
		Shipping: shipping,
		Total:    169.97 + shipping,
		ShippingAddress: models.ShippingAddress{
			FirstName: "Claire",
			LastName:  "Dupont",
		},
	}
}

func TestGenerateOrderConfirmationHTML(t *testing.T) {
	order := sampleOrder(0)
	html := GenerateOrderConfirmationHTML(order, "")

	assert.Contains(t, html, "Claire")
	assert.Contains(t, html, order.ID.Hex())
	assert.Contains(t, html, "Casque audio")
	assert.Contains(t, html, "Mug isotherme")
	assert.Contains(t, html, "169.97€")
	// livraison gratuite affichée en clair, pas "0.00€"
	assert.Contains(t, html, "Offerte")
	assert.NotContains(t, html, "<img")
}

func TestGenerateOrderConfirmationHTMLWithShippingAndQR(t *testing.T) {
	order := sampleOrder(5.99)
	html := GenerateOrderConfirmationHTML(order, "data:image/png;base64,abc")

	assert.Contains(t, html, "5.99€")
	assert.NotContains(t, html, "Offerte")
	assert.Contains(t, html, `src="data:image/png;base64,abc"`)
	assert.Contains(t, html, fmt.Sprintf("%.2f€", order.Total))
}
