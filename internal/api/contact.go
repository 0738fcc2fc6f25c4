package api

import (
	"net/http"
	"strings"

	"github.com/draftlinestudio/leads-backend/internal/lead"
)

// ─── POST /api/contact ────────────────────────────────────────────────────────

type contactRequest struct {
	// Some frontend variants send full_name, others name. Either works.
	Name             string `json:"name"`
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Company          string `json:"company"`
	Subject          string `json:"subject"`
	Message          string `json:"message"`
	PreferredContact string `json:"preferredContact"`
}

// handleContact validates a contact submission and fires the two
// notification emails. Same envelope semantics as the estimate endpoint.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decode(w, r, &req) {
		return
	}

	name := req.Name
	if name == "" {
		name = req.FullName
	}

	missing := missingFields(map[string]string{
		"name":    name,
		"email":   req.Email,
		"subject": req.Subject,
		"message": req.Message,
	})
	if len(missing) > 0 {
		respondErr(w, http.StatusBadRequest, "Missing required fields: "+strings.Join(missing, ", "))
		return
	}
	if !validEmail(req.Email) {
		respondErr(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	sub := lead.New(lead.KindContact)
	sub.Name = name
	sub.Email = req.Email
	sub.Phone = req.Phone
	sub.Company = req.Company
	sub.Subject = req.Subject
	sub.Message = req.Message
	sub.PreferredContact = req.PreferredContact

	outcome := s.notifier.Notify(r.Context(), sub)

	s.recordToLog(r, func() error {
		return s.leadLog.RecordSubmission(r.Context(), sub, outcome.Admin, outcome.Client)
	})

	respond(w, http.StatusOK, formResponse{
		Success:    true,
		Message:    "Message received. We'll get back to you shortly.",
		EmailsSent: outcome,
	})
}
