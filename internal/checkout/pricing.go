package checkout

import (
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// Livraison gratuite au-dessus de 50€, sinon forfait 5.99€
	FreeShippingThreshold = 50.00
	FlatShippingFee       = 5.99
)

// PricedItem est une ligne de panier résolue avec le prix ACTUEL du
// produit. Le prix n'est figé qu'à la création de la commande.
type PricedItem struct {
	ProductID primitive.ObjectID `json:"product_id"`
	Name      string             `json:"name"`
	Price     float64            `json:"price"`
	Quantity  int                `json:"quantity"`
}

// Subtotal calcule la somme des lignes au prix courant
func Subtotal(items []PricedItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// ShippingFee retourne les frais de port pour un sous-total donné
func ShippingFee(subtotal float64) float64 {
	if subtotal > FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}

// Total = sous-total + frais de port
func Total(subtotal float64) float64 {
	return subtotal + ShippingFee(subtotal)
}

// AmountInCents convertit un total en centimes pour Stripe
func AmountInCents(total float64) int64 {
	return int64(math.Round(total * 100))
}
