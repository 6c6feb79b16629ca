package store

import (
	"context"
	"time"

	"storefront_back_end/internal/checkout"
	"storefront_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// =============================================
// PRODUITS
// =============================================

type ProductStore struct {
	Products  *mongo.Collection
	Movements *mongo.Collection
}

func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{
		Products:  db.Collection("products"),
		Movements: db.Collection("stock_movements"),
	}
}

func (s *ProductStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := s.Products.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, checkout.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DecrementStock décrémente seulement si le stock reste >= 0 : le filtre
// {stock: {$gte: qty}} sérialise le check-and-decrement côté base, donc
// deux checkouts concurrents ne peuvent pas passer tous les deux en négatif.
func (s *ProductStore) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (int, error) {
	var updated models.Product
	err := s.Products.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{
			"$inc": bson.M{"stock": -qty},
			"$set": bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)

	if err == mongo.ErrNoDocuments {
		// Soit le produit n'existe plus, soit le stock est insuffisant
		if count, cerr := s.Products.CountDocuments(ctx, bson.M{"_id": id}); cerr == nil && count == 0 {
			return 0, checkout.ErrProductNotFound
		}
		return 0, checkout.ErrInsufficientStock
	}
	if err != nil {
		return 0, err
	}
	return updated.Stock, nil
}

func (s *ProductStore) RecordMovement(ctx context.Context, m *models.StockMovement) error {
	_, err := s.Movements.InsertOne(ctx, m)
	return err
}

// =============================================
// PANIERS
// =============================================

type CartStore struct {
	Carts *mongo.Collection
}

func NewCartStore(db *mongo.Database) *CartStore {
	return &CartStore{Carts: db.Collection("carts")}
}

// Get retourne le panier de la session, ou un panier vide si elle n'en
// a pas encore : le panier n'est créé en base qu'au premier ajout.
func (s *CartStore) Get(ctx context.Context, sessionID string) (*models.Cart, error) {
	var cart models.Cart
	err := s.Carts.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		return &models.Cart{SessionID: sessionID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

func (s *CartStore) Save(ctx context.Context, cart *models.Cart) error {
	now := time.Now()
	_, err := s.Carts.UpdateOne(ctx,
		bson.M{"session_id": cart.SessionID},
		bson.M{
			"$set":         bson.M{"items": cart.Items, "updated_at": now},
			"$setOnInsert": bson.M{"session_id": cart.SessionID, "created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// Clear vide le panier sans le supprimer. Idempotent : vider un panier
// vide (ou inexistant) réussit en silence.
func (s *CartStore) Clear(ctx context.Context, sessionID string) error {
	_, err := s.Carts.UpdateOne(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{"items": []models.CartItem{}, "updated_at": time.Now()}},
	)
	return err
}

// =============================================
// COMMANDES
// =============================================

type OrderStore struct {
	Orders *mongo.Collection
}

func NewOrderStore(db *mongo.Database) *OrderStore {
	return &OrderStore{Orders: db.Collection("orders")}
}

func (s *OrderStore) Insert(ctx context.Context, order *models.Order) error {
	_, err := s.Orders.InsertOne(ctx, order)
	return err
}

func (s *OrderStore) ExistsForPayment(ctx context.Context, paymentIntentID string) (bool, error) {
	count, err := s.Orders.CountDocuments(ctx, bson.M{"payment_intent_id": paymentIntentID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// =============================================
// TRANSACTIONS
// =============================================

// MongoTx exécute fn dans une transaction multi-documents : l'insertion
// de la commande, les décréments de stock et le vidage du panier sont
// validés ou annulés ensemble.
type MongoTx struct {
	Client *mongo.Client
}

func NewMongoTx(client *mongo.Client) *MongoTx {
	return &MongoTx{Client: client}
}

func (t *MongoTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.Client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}
