package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/avstrong/tourbooking/internal/booking"
)

const maxBodyBytes = 64 << 10

type errorResponse struct {
	Message   string              `json:"message"`
	Reason    string              `json:"reason,omitempty"`
	Field     string              `json:"field,omitempty"`
	Fields    map[string][]string `json:"fields,omitempty"`
	Required  *decimal.Decimal    `json:"required,omitempty"`
	Available *decimal.Decimal    `json:"available,omitempty"`
}

type promoRequest struct {
	Code string `json:"code"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.l.LogErrorf("Could not encode response: %v", err.Error())
	}
}

//nolint:cyclop // flat mapping of the error taxonomy
func (s *Server) writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Message: booking.Message(err)}
	status := http.StatusInternalServerError

	switch {
	case booking.IsInputError(err) != nil:
		status = http.StatusBadRequest
		resp.Reason = "invalid_input"
		resp.Fields = booking.IsInputError(err).Fields()
	case errors.Is(err, booking.ErrSessionNotFound), errors.Is(err, booking.ErrOfferingNotFound):
		status = http.StatusNotFound
		resp.Reason = "not_found"
	case booking.IsPromoValidationError(err) != nil:
		status = http.StatusUnprocessableEntity
		resp.Reason = "invalid_promo_code"
	case booking.IsInsufficientBalanceError(err) != nil:
		balanceErr := booking.IsInsufficientBalanceError(err)
		status = http.StatusUnprocessableEntity
		resp.Reason = string(booking.ReasonInsufficientBalance)
		resp.Required = &balanceErr.Required
		resp.Available = &balanceErr.Available
	case booking.IsRejectError(err) != nil:
		rejectErr := booking.IsRejectError(err)
		status = http.StatusUnprocessableEntity
		resp.Reason = string(rejectErr.Reason)
		resp.Field = rejectErr.Field
	case booking.IsServerRejectionError(err) != nil:
		status = http.StatusConflict
		resp.Reason = "rejected_by_server"
	case errors.Is(err, booking.ErrSubmissionInProgress):
		status = http.StatusConflict
		resp.Reason = "submission_in_progress"
	case errors.Is(err, booking.ErrAlreadySubmitted):
		status = http.StatusConflict
		resp.Reason = "already_submitted"
	case errors.Is(err, booking.ErrValidationSuperseded):
		status = http.StatusConflict
		resp.Reason = "superseded"
	case booking.IsNetworkError(err) != nil:
		status = http.StatusBadGateway
		resp.Reason = "network"
	}

	if status == http.StatusInternalServerError || status == http.StatusBadGateway {
		s.l.LogErrorf("Request failed: %v", err.Error())
	}

	s.writeJSON(w, status, resp)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: "The request could not be read.",
			Reason:  "invalid_body",
		})

		return false
	}

	return true
}

func (s *Server) openSessionHandler(w http.ResponseWriter, r *http.Request) {
	var input booking.OpenInput

	if !s.decode(w, r, &input) {
		return
	}

	view, err := s.bManager.Open(r.Context(), &input)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, view)
}

func (s *Server) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	view, err := s.bManager.View(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) updateSessionHandler(w http.ResponseWriter, r *http.Request) {
	var patch booking.DraftPatch

	if !s.decode(w, r, &patch) {
		return
	}

	view, err := s.bManager.Update(r.Context(), r.PathValue("id"), &patch)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) closeSessionHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.bManager.Close(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) applyPromoHandler(w http.ResponseWriter, r *http.Request) {
	var req promoRequest

	if !s.decode(w, r, &req) {
		return
	}

	view, err := s.bManager.ApplyPromo(r.Context(), r.PathValue("id"), req.Code)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) removePromoHandler(w http.ResponseWriter, r *http.Request) {
	view, err := s.bManager.RemovePromo(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) refreshRateHandler(w http.ResponseWriter, r *http.Request) {
	view, err := s.bManager.RefreshRate(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) submitHandler(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.bManager.Submit(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, receipt)
}

func (s *Server) balanceHandler(w http.ResponseWriter, r *http.Request) {
	account, err := s.bManager.Balance(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, account)
}

func (s *Server) livenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addRoutes(r *http.ServeMux) {
	routes := map[string]http.HandlerFunc{
		"POST /api/bookings/v1/sessions":              s.openSessionHandler,
		"GET /api/bookings/v1/sessions/{id}":          s.getSessionHandler,
		"PATCH /api/bookings/v1/sessions/{id}":        s.updateSessionHandler,
		"DELETE /api/bookings/v1/sessions/{id}":       s.closeSessionHandler,
		"POST /api/bookings/v1/sessions/{id}/promo":   s.applyPromoHandler,
		"DELETE /api/bookings/v1/sessions/{id}/promo": s.removePromoHandler,
		"POST /api/bookings/v1/sessions/{id}/rate":    s.refreshRateHandler,
		"POST /api/bookings/v1/sessions/{id}/submit":  s.submitHandler,
		"GET /api/accounts/v1/{id}/balance":           s.balanceHandler,
	}

	routes[fmt.Sprintf("GET %s", s.conf.LivenessEndpoint)] = s.livenessHandler

	for pattern, handler := range routes {
		r.Handle(pattern, s.applyMiddlewares(handler, s.loggerMiddleware(), s.traceMiddleware(), s.recoverMiddleware()))
	}
}
