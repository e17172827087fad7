package handler

import (
	"net/http"

	"github.com/brocante/brocante-api/internal/model"
	"github.com/brocante/brocante-api/internal/service"
)

// PaymentHandler handles HTTP requests for card charges.
type PaymentHandler struct {
	service *service.PaymentService
}

func NewPaymentHandler(svc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: svc}
}

// HandleCharge handles POST /payment requests and relays the gateway's
// charge object.
func (h *PaymentHandler) HandleCharge(w http.ResponseWriter, r *http.Request) {
	var req model.ChargeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	charge, err := h.service.Charge(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(charge)
}
