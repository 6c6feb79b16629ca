package checkout

import (
	"context"
	"log"
	"time"

	"storefront_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductStore expose le catalogue au cycle de commande.
type ProductStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	// DecrementStock décrémente de façon conditionnelle (stock >= qty)
	// et retourne le stock restant. ErrInsufficientStock sinon.
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (int, error)
	RecordMovement(ctx context.Context, m *models.StockMovement) error
}

// CartStore expose le panier de session.
type CartStore interface {
	// Get retourne un panier vide (jamais nil) si la session n'en a pas.
	Get(ctx context.Context, sessionID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Clear(ctx context.Context, sessionID string) error
}

// OrderStore expose les commandes.
type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	ExistsForPayment(ctx context.Context, paymentIntentID string) (bool, error)
}

// TxRunner exécute fn comme une unité atomique : insertion commande,
// décréments de stock et vidage du panier passent ou échouent ensemble.
type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service orchestre panier, stock et commandes.
type Service struct {
	Products ProductStore
	Carts    CartStore
	Orders   OrderStore
	Tx       TxRunner
}

func NewService(products ProductStore, carts CartStore, orders OrderStore, tx TxRunner) *Service {
	return &Service{Products: products, Carts: carts, Orders: orders, Tx: tx}
}

// AddItem ajoute un produit au panier après vérification du stock.
// Le stock n'est pas réservé ici : il n'est décrémenté qu'à la commande.
func (s *Service) AddItem(ctx context.Context, sessionID string, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.Products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, ErrInsufficientStock
	}

	cart, err := s.Carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, models.CartItem{ProductID: productID, Quantity: quantity})
	}

	if err := s.Carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateQuantity remplace la quantité d'une ligne existante.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID string, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.Products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, ErrInsufficientStock
	}

	cart, err := s.Carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = quantity
			if err := s.Carts.Save(ctx, cart); err != nil {
				return nil, err
			}
			return cart, nil
		}
	}
	return nil, ErrProductNotFound
}

// RemoveItem retire une ligne du panier, sans condition.
func (s *Service) RemoveItem(ctx context.Context, sessionID string, productID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.Carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	items := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	cart.Items = items

	if err := s.Carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ClearCart vide le panier. Vider un panier déjà vide réussit en silence.
func (s *Service) ClearCart(ctx context.Context, sessionID string) error {
	return s.Carts.Clear(ctx, sessionID)
}

// ResolveCart retourne les lignes du panier valorisées au prix ACTUEL
// des produits. Les références orphelines (produit supprimé depuis
// l'ajout au panier) sont écartées à la lecture.
func (s *Service) ResolveCart(ctx context.Context, sessionID string) ([]PricedItem, error) {
	cart, err := s.Carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	items := make([]PricedItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		product, err := s.Products.FindByID(ctx, line.ProductID)
		if err == ErrProductNotFound {
			log.Printf("⚠️ Produit %s supprimé, ligne de panier ignorée", line.ProductID.Hex())
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, PricedItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  line.Quantity,
		})
	}
	return items, nil
}

// OrderRequest décrit une commande à créer depuis un panier de session.
type OrderRequest struct {
	SessionID       string
	UserID          string
	Address         models.ShippingAddress
	Status          string // "pending" (checkout direct) ou "processing" (webhook)
	PaymentIntentID string
}

// CreateOrder convertit le panier en commande. Toute la séquence —
// contrôle d'idempotence, insertion de la commande, décréments
// conditionnels de stock, mouvements de stock, vidage du panier —
// s'exécute dans une seule transaction : un échec au milieu ne laisse
// ni stock décrémenté sans commande, ni commande sans décrément.
func (s *Service) CreateOrder(ctx context.Context, req OrderRequest) (*models.Order, error) {
	if req.Status == "" {
		req.Status = models.OrderStatusPending
	}

	var order *models.Order
	err := s.Tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		// Idempotence : un même payment_intent ne crée qu'une commande,
		// même si Stripe relivre l'événement.
		if req.PaymentIntentID != "" {
			exists, err := s.Orders.ExistsForPayment(txCtx, req.PaymentIntentID)
			if err != nil {
				return err
			}
			if exists {
				return ErrDuplicatePayment
			}
		}

		items, err := s.ResolveCart(txCtx, req.SessionID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		subtotal := Subtotal(items)
		now := time.Now()

		// Copie figée : le prix capturé ici ne bougera plus
		orderItems := make([]models.OrderItem, 0, len(items))
		for _, item := range items {
			orderItems = append(orderItems, models.OrderItem{
				ProductID: item.ProductID,
				Name:      item.Name,
				Price:     item.Price,
				Quantity:  item.Quantity,
			})
		}

		order = &models.Order{
			ID:              primitive.NewObjectID(),
			UserID:          req.UserID,
			SessionID:       req.SessionID,
			Items:           orderItems,
			Subtotal:        subtotal,
			Shipping:        ShippingFee(subtotal),
			Total:           Total(subtotal),
			Status:          req.Status,
			PaymentIntentID: req.PaymentIntentID,
			ShippingAddress: req.Address,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		if err := s.Orders.Insert(txCtx, order); err != nil {
			return err
		}

		for _, item := range items {
			newStock, err := s.Products.DecrementStock(txCtx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			movement := &models.StockMovement{
				ID:        primitive.NewObjectID(),
				ProductID: item.ProductID,
				Type:      "sale",
				Quantity:  item.Quantity,
				PrevStock: newStock + item.Quantity,
				NewStock:  newStock,
				OrderID:   &order.ID,
				UserID:    req.UserID,
				CreatedAt: now,
			}
			if err := s.Products.RecordMovement(txCtx, movement); err != nil {
				return err
			}
		}

		return s.Carts.Clear(txCtx, req.SessionID)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Commande %s créée (%.2f€, %d articles, statut %s)",
		order.ID.Hex(), order.Total, len(order.Items), order.Status)
	return order, nil
}
