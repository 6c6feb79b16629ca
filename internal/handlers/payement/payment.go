package payement

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"storefront_back_end/internal/checkout"
	"storefront_back_end/internal/database"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/webhook"
)

// ✅ Crée un PaymentIntent Stripe depuis le panier serveur
func CreatePaymentIntent(c *gin.Context) {
	userID := c.GetString("user_id")
	email := c.GetString("email")
	sessionID := c.GetString("session_id")

	if userID == "" || email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié ou e-mail manquant"})
		return
	}

	var input struct {
		ShippingAddress models.ShippingAddress `json:"shippingAddress" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Adresse de livraison invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Le montant est calculé côté serveur, jamais depuis le client
	items, err := database.Checkout.ResolveCart(ctx, sessionID)
	if err != nil {
		log.Println("❌ Erreur lecture panier:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le panier est vide"})
		return
	}

	subtotal := checkout.Subtotal(items)
	total := checkout.Total(subtotal)

	addressJSON, err := json.Marshal(input.ShippingAddress)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sérialisation adresse"})
		return
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(checkout.AmountInCents(total)),
		Currency: stripe.String("eur"),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"user_id":    userID,
			"email":      email,
			"session_id": sessionID,
			"address":    string(addressJSON),
		},
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		log.Println("❌ Erreur Stripe:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("💳 PaymentIntent créé : %s (%.2f€) pour %s", intent.ID, total, email)

	c.JSON(http.StatusOK, gin.H{
		"clientSecret": intent.ClientSecret,
		"paymentId":    intent.ID,
		"amount":       total,
	})
}

// ✅ Webhook Stripe — la signature est vérifiée sur le body brut avant
// tout parsing.
func StripeWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := c.GetRawData()
	if err != nil {
		log.Println("❌ Lecture payload échouée:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Échec lecture body"})
		return
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if secret == "" {
		log.Println("❌ STRIPE_WEBHOOK_SECRET manquant")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook non configuré"})
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), secret)
	if err != nil {
		log.Println("❌ Signature Stripe invalide:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature invalide"})
		return
	}

	log.Printf("📥 Événement Stripe reçu : %s", event.Type)

	if event.Type != "payment_intent.succeeded" {
		// Acquitté sans traitement, Stripe n'a pas besoin de réessayer
		log.Printf("ℹ️ Événement ignoré : %s", event.Type)
		c.Status(http.StatusOK)
		return
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		log.Println("❌ Erreur décodage PaymentIntent:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payload invalide"})
		return
	}

	if err := handlePaymentSucceeded(&pi); err != nil {
		// 500 → Stripe relivrera l'événement, l'idempotence absorbe le doublon
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur traitement paiement"})
		return
	}

	c.Status(http.StatusOK)
}

// notifyCartCleared prévient les clients websocket que le panier a été
// vidé suite au webhook. Variable pour pouvoir l'intercepter en test.
var notifyCartCleared = func(sessionID string) {
	if database.Redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := database.Redis.Publish(ctx, "cart:"+sessionID, "cleared").Err(); err != nil {
		log.Println("⚠️ Publish panier échoué:", err)
	}
}

func handlePaymentSucceeded(pi *stripe.PaymentIntent) error {
	log.Printf("🧠 PaymentIntent reçu : %s", pi.ID)

	userID := pi.Metadata["user_id"]
	userEmail := pi.Metadata["email"]
	sessionID := pi.Metadata["session_id"]

	if userID == "" || sessionID == "" {
		log.Println("⚠️ Métadonnées incomplètes, événement ignoré")
		return nil
	}

	var address models.ShippingAddress
	if raw := pi.Metadata["address"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &address); err != nil {
			log.Println("⚠️ Adresse illisible dans les métadonnées:", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	order, err := database.Checkout.CreateOrder(ctx, checkout.OrderRequest{
		SessionID:       sessionID,
		UserID:          userID,
		Address:         address,
		Status:          models.OrderStatusProcessing,
		PaymentIntentID: pi.ID,
	})
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrDuplicatePayment):
			log.Println("🔁 Commande déjà enregistrée, on ignore.")
			return nil
		case errors.Is(err, checkout.ErrEmptyCart):
			log.Println("⚠️ Panier introuvable pour", sessionID)
			return nil
		default:
			log.Println("❌ Erreur création commande:", err)
			return err
		}
	}

	log.Printf("✅ Commande %s créée (%.2f€)", order.ID.Hex(), order.Total)

	// Les onglets abonnés au panier doivent le voir vidé, comme après
	// une commande passée en direct
	notifyCartCleared(sessionID)

	if userEmail != "" {
		go sendOrderConfirmation(order, userEmail)
	}
	return nil
}

// envoi asynchrone : QR de suivi + facture PDF en pièce jointe
func sendOrderConfirmation(order *models.Order, email string) {
	qr, err := utils.GenerateTrackingQR(order.ID.Hex())
	if err != nil {
		log.Println("⚠️ Erreur génération QR :", err)
	}

	html := utils.GenerateOrderConfirmationHTML(order, qr)

	pdf, err := utils.RenderInvoicePDF(utils.GetFrontendInvoiceBaseURL(), order.ID.Hex())
	if err != nil {
		log.Println("❌ Erreur génération PDF :", err)
		pdf = nil
	}

	if err := utils.SendConfirmationEmail(email, "Confirmation de votre commande", html, pdf); err != nil {
		log.Println("❌ Erreur envoi e-mail confirmation :", err)
	} else {
		log.Println("📧 E-mail de confirmation envoyé à", email)
	}
}
