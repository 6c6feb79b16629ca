package checkout

import "errors"

// Erreurs métier du cycle de vie commande/stock. Les handlers les
// traduisent en réponses JSON avec le bon code HTTP.
var (
	ErrProductNotFound   = errors.New("produit introuvable")
	ErrInsufficientStock = errors.New("stock insuffisant")
	ErrEmptyCart         = errors.New("panier vide")
	ErrDuplicatePayment  = errors.New("paiement déjà traité")
	ErrInvalidQuantity   = errors.New("quantité invalide")
)
