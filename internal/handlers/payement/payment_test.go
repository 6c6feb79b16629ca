package payement

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"storefront_back_end/internal/checkout"
	"storefront_back_end/internal/database"
	"storefront_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func webhookRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/payment/webhook", StripeWebhook)
	return r
}

// signe un payload comme Stripe : HMAC-SHA256 sur "timestamp.payload"
func stripeSignature(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return "t=" + strconv.FormatInt(ts.Unix(), 10) + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}

func TestStripeWebhookRejectsInvalidSignature(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")

	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", stripeSignature(payload, "whsec_autre", time.Now()))
	webhookRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStripeWebhookRejectsMissingSignature(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook",
		bytes.NewReader([]byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)))
	webhookRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStripeWebhookFailsWithoutSecret(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook",
		bytes.NewReader([]byte(`{}`)))
	webhookRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestStripeWebhookIgnoresOtherEvents(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")

	payload := []byte(`{"id":"evt_1","object":"event","api_version":"2025-09-30.clover","type":"payment_intent.created","data":{"object":{"id":"pi_1"}}}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", stripeSignature(payload, "whsec_test", time.Now()))
	webhookRouter().ServeHTTP(w, req)

	// acquitté sans traitement, Stripe ne doit pas réessayer
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStripeWebhookIgnoresSucceededWithoutMetadata(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")

	payload := []byte(`{"id":"evt_1","object":"event","api_version":"2025-09-30.clover","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","metadata":{}}}}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", stripeSignature(payload, "whsec_test", time.Now()))
	webhookRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// memCheckoutStore sert de catalogue, panier et registre de commandes
// en mémoire pour exercer le webhook de bout en bout.
type memCheckoutStore struct {
	products map[primitive.ObjectID]*models.Product
	carts    map[string]*models.Cart
	orders   []*models.Order
}

func (m *memCheckoutStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, checkout.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memCheckoutStore) DecrementStock(_ context.Context, id primitive.ObjectID, qty int) (int, error) {
	p, ok := m.products[id]
	if !ok || p.Stock < qty {
		return 0, checkout.ErrInsufficientStock
	}
	p.Stock -= qty
	return p.Stock, nil
}

func (m *memCheckoutStore) RecordMovement(context.Context, *models.StockMovement) error { return nil }

func (m *memCheckoutStore) Get(_ context.Context, sessionID string) (*models.Cart, error) {
	if c, ok := m.carts[sessionID]; ok {
		return c, nil
	}
	return &models.Cart{SessionID: sessionID}, nil
}

func (m *memCheckoutStore) Save(_ context.Context, cart *models.Cart) error {
	m.carts[cart.SessionID] = cart
	return nil
}

func (m *memCheckoutStore) Clear(_ context.Context, sessionID string) error {
	delete(m.carts, sessionID)
	return nil
}

func (m *memCheckoutStore) Insert(_ context.Context, order *models.Order) error {
	m.orders = append(m.orders, order)
	return nil
}

func (m *memCheckoutStore) ExistsForPayment(_ context.Context, id string) (bool, error) {
	for _, o := range m.orders {
		if o.PaymentIntentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *memCheckoutStore) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func TestStripeWebhookCreatesOrderAndClearsCart(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")

	productID := primitive.NewObjectID()
	store := &memCheckoutStore{
		products: map[primitive.ObjectID]*models.Product{
			productID: {ID: productID, Name: "Clavier mécanique", Price: 20.00, Stock: 5},
		},
		carts: map[string]*models.Cart{
			"sess-webhook": {SessionID: "sess-webhook", Items: []models.CartItem{{ProductID: productID, Quantity: 2}}},
		},
	}

	prevCheckout := database.Checkout
	database.Checkout = checkout.NewService(store, store, store, store)
	defer func() { database.Checkout = prevCheckout }()

	var notified []string
	prevNotify := notifyCartCleared
	notifyCartCleared = func(sessionID string) { notified = append(notified, sessionID) }
	defer func() { notifyCartCleared = prevNotify }()

	// pas d'e-mail dans les métadonnées : la confirmation n'est pas envoyée
	payload := []byte(`{"id":"evt_ok","object":"event","api_version":"2025-09-30.clover","type":"payment_intent.succeeded","data":{"object":{"id":"pi_webhook_1","metadata":{"user_id":"u1","session_id":"sess-webhook"}}}}`)
	sig := stripeSignature(payload, "whsec_test", time.Now())

	r := webhookRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payment/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", sig)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, store.orders, 1)
	order := store.orders[0]
	assert.Equal(t, "pi_webhook_1", order.PaymentIntentID)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	assert.Equal(t, "u1", order.UserID)
	assert.InDelta(t, 45.99, order.Total, 0.001) // 2×20.00 + 5.99 de port

	// le panier est vidé et les clients websocket prévenus
	_, stillThere := store.carts["sess-webhook"]
	assert.False(t, stillThere)
	assert.Equal(t, []string{"sess-webhook"}, notified)

	// Stripe relivre le même événement : pas de seconde commande
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/payment/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", sig)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, store.orders, 1)
	assert.Len(t, notified, 1)
}
