package api

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/draftlinestudio/leads-backend/internal/payments"
	"github.com/draftlinestudio/leads-backend/internal/pricing"
)

// minChargeCents is Stripe's minimum chargeable amount for USD.
const minChargeCents = 50

// checkoutFormData is the pricing slice of both checkout endpoints' bodies.
type checkoutFormData struct {
	ProjectType string   `json:"projectType"`
	Budget      string   `json:"budget"`
	Timeline    string   `json:"timeline"`
	Features    []string `json:"features"`
}

// ─── POST /calculate-price ────────────────────────────────────────────────────

type calculatePriceRequest struct {
	FormData checkoutFormData `json:"formData"`
}

type pricingPayload struct {
	BasePrice  int64             `json:"basePrice"`
	FinalPrice int64             `json:"finalPrice"`
	Breakdown  pricing.Breakdown `json:"breakdown"`
}

type calculatePriceResponse struct {
	Success bool           `json:"success"`
	Pricing pricingPayload `json:"pricing"`
}

// handleCalculatePrice prices a form selection without any side effects.
// The browser calls this as the user toggles options.
func (s *Server) handleCalculatePrice(w http.ResponseWriter, r *http.Request) {
	var req calculatePriceRequest
	if !decode(w, r, &req) {
		return
	}

	breakdown, err := s.table.Compute(req.FormData.ProjectType, req.FormData.Timeline, req.FormData.Features)
	if err != nil {
		respondErr(w, http.StatusBadRequest, fmt.Sprintf("Unknown project type %q", req.FormData.ProjectType))
		return
	}
	s.logUnknownFeatures(r, breakdown.UnknownFeatures)

	respond(w, http.StatusOK, calculatePriceResponse{
		Success: true,
		Pricing: pricingPayload{
			BasePrice:  breakdown.BasePrice,
			FinalPrice: breakdown.FinalPrice,
			Breakdown:  breakdown,
		},
	})
}

// ─── POST /create-checkout-session ────────────────────────────────────────────

type customerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

type createCheckoutRequest struct {
	FormData     checkoutFormData `json:"formData"`
	CustomerInfo customerInfo     `json:"customerInfo"`
}

type createCheckoutResponse struct {
	URL         string `json:"url"`
	SessionID   string `json:"sessionId"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	InvoiceID   string `json:"invoiceId"`
}

// handleCreateCheckoutSession prices the selection and opens a Stripe
// Checkout Session for it. Whole dollars are converted to cents here and
// nowhere else.
func (s *Server) handleCreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req createCheckoutRequest
	if !decode(w, r, &req) {
		return
	}

	if req.CustomerInfo.Name == "" || req.CustomerInfo.Email == "" {
		respondErr(w, http.StatusBadRequest, "Missing required fields: name, email")
		return
	}
	if !validEmail(req.CustomerInfo.Email) {
		respondErr(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	breakdown, err := s.table.Compute(req.FormData.ProjectType, req.FormData.Timeline, req.FormData.Features)
	if err != nil {
		respondErr(w, http.StatusBadRequest, fmt.Sprintf("Unknown project type %q", req.FormData.ProjectType))
		return
	}
	s.logUnknownFeatures(r, breakdown.UnknownFeatures)

	amountCents := breakdown.FinalPrice * 100
	if amountCents < minChargeCents {
		respondErr(w, http.StatusBadRequest, "Amount is below the minimum chargeable amount")
		return
	}

	projectName := s.table.ProjectTypes[req.FormData.ProjectType].Name
	description := fmt.Sprintf("%s — %s timeline, %d add-on(s)",
		projectName, req.FormData.Timeline, len(breakdown.SelectedFeatures))
	invoiceID := uuid.NewString()

	sess, err := s.payments.CreateCheckoutSession(r.Context(), payments.CreateSessionParams{
		AmountCents: amountCents,
		Currency:    "usd",
		Name:        projectName,
		Description: description,
		Email:       req.CustomerInfo.Email,
		SuccessURL:  s.cfg.FrontendURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   s.cfg.FrontendURL + "/checkout/cancelled",
		Metadata: map[string]string{
			"invoice_id":  invoiceID,
			"description": description,
		},
	})
	if err != nil {
		s.respondInternalErr(w, r, fmt.Errorf("create checkout session: %w", err))
		return
	}

	respond(w, http.StatusOK, createCheckoutResponse{
		URL:         sess.URL,
		SessionID:   sess.ID,
		Amount:      breakdown.FinalPrice,
		Description: description,
		InvoiceID:   invoiceID,
	})
}
