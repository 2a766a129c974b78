package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Harshitk-cp/fabric/internal/domain"
	"github.com/Harshitk-cp/fabric/internal/ir"
	"github.com/Harshitk-cp/fabric/internal/service"
)

type TranslateHandler struct {
	svc *service.TranslationService
}

func NewTranslateHandler(svc *service.TranslationService) *TranslateHandler {
	return &TranslateHandler{svc: svc}
}

type translateRequest struct {
	Text string `json:"text"`
}

func (h *TranslateHandler) Rule(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rules, err := h.svc.TranslateRule(r.Context(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTranslationTextEmpty):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ir.ErrUnsupportedFeature):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusServiceUnavailable, "rule translation unavailable: "+err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string][]domain.Rule{"rules": rules})
}

func (h *TranslateHandler) Statement(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stmt, err := h.svc.TranslateStatement(r.Context(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTranslationTextEmpty):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusServiceUnavailable, "statement translation unavailable: "+err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]*domain.Statement{"statement": stmt})
}
