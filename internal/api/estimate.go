package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/draftlinestudio/leads-backend/internal/lead"
	"github.com/draftlinestudio/leads-backend/internal/notify"
)

// ─── POST /api/estimate ───────────────────────────────────────────────────────

type estimateRequest struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Company     string   `json:"company"`
	Country     string   `json:"country"`
	Industry    string   `json:"industry"`
	ProjectType string   `json:"projectType"`
	Budget      string   `json:"budget"`
	Timeline    string   `json:"timeline"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

type formResponse struct {
	Success    bool           `json:"success"`
	Message    string         `json:"message,omitempty"`
	EmailsSent notify.Outcome `json:"emailsSent"`
}

// handleEstimate validates an estimate submission, prices it, and fires the
// two notification emails. Provider failures are reported inside the 200
// envelope — a degraded email channel must never block a lead.
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if !decode(w, r, &req) {
		return
	}

	missing := missingFields(map[string]string{
		"name":        req.Name,
		"email":       req.Email,
		"projectType": req.ProjectType,
		"budget":      req.Budget,
		"timeline":    req.Timeline,
	})
	if len(missing) > 0 {
		respondErr(w, http.StatusBadRequest, "Missing required fields: "+strings.Join(missing, ", "))
		return
	}
	if !validEmail(req.Email) {
		respondErr(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	breakdown, err := s.table.Compute(req.ProjectType, req.Timeline, req.Features)
	if err != nil {
		respondErr(w, http.StatusBadRequest, fmt.Sprintf("Unknown project type %q", req.ProjectType))
		return
	}
	s.logUnknownFeatures(r, breakdown.UnknownFeatures)

	sub := lead.New(lead.KindQuote)
	sub.Name = req.Name
	sub.Email = req.Email
	sub.Phone = req.Phone
	sub.Company = req.Company
	sub.Country = req.Country
	sub.Industry = req.Industry
	sub.ProjectType = req.ProjectType
	sub.Budget = req.Budget
	sub.Timeline = req.Timeline
	sub.Description = req.Description
	sub.Features = req.Features
	sub.FinalPrice = breakdown.FinalPrice

	outcome := s.notifier.Notify(r.Context(), sub)

	s.recordToLog(r, func() error {
		return s.leadLog.RecordSubmission(r.Context(), sub, outcome.Admin, outcome.Client)
	})

	respond(w, http.StatusOK, formResponse{
		Success:    true,
		Message:    "Estimate request received. We'll be in touch within one business day.",
		EmailsSent: outcome,
	})
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

// missingFields returns the names of required fields whose trimmed value is
// empty, in a stable order.
func missingFields(required map[string]string) []string {
	// Fixed order so the 400 message is deterministic.
	order := []string{"name", "email", "subject", "message", "projectType", "budget", "timeline"}
	var missing []string
	for _, name := range order {
		if value, ok := required[name]; ok && strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// logUnknownFeatures flags feature IDs the pricing table does not know —
// the signal that the frontend options and this table have drifted apart.
func (s *Server) logUnknownFeatures(r *http.Request, ids []string) {
	if len(ids) == 0 {
		return
	}
	s.logger.Warn("pricing: ignoring unknown feature ids",
		"features", ids,
		"request_id", middleware.GetReqID(r.Context()),
	)
}
