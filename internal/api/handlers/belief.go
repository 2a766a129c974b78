package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Harshitk-cp/fabric/internal/domain"
	"github.com/Harshitk-cp/fabric/internal/engine"
	"github.com/Harshitk-cp/fabric/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type BeliefHandler struct {
	svc *service.BeliefService
}

func NewBeliefHandler(svc *service.BeliefService) *BeliefHandler {
	return &BeliefHandler{svc: svc}
}

type createBeliefSystemRequest struct {
	Name     string        `json:"name"`
	Strategy string        `json:"strategy,omitempty"`
	Rules    []domain.Rule `json:"rules,omitempty"`
}

type beliefSystemResponse struct {
	ID                   uuid.UUID                    `json:"id"`
	Strategy             domain.ForkingStrategy       `json:"strategy"`
	Statements           []domain.Statement           `json:"statements"`
	Rules                []domain.Rule                `json:"rules"`
	WorldState           map[string]any               `json:"world_state"`
	Forks                []uuid.UUID                  `json:"forks"`
	LatentContradictions []domain.ContradictionRecord `json:"latent_contradictions,omitempty"`
}

func beliefSystemView(bs *engine.BeliefSystem) beliefSystemResponse {
	forks := make([]uuid.UUID, 0, len(bs.Forks()))
	for _, f := range bs.Forks() {
		forks = append(forks, f.ID())
	}
	return beliefSystemResponse{
		ID:                   bs.ID(),
		Strategy:             bs.Strategy(),
		Statements:           bs.Statements(),
		Rules:                bs.Rules(),
		WorldState:           bs.WorldState(),
		Forks:                forks,
		LatentContradictions: bs.LatentContradictions(),
	}
}

func (h *BeliefHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBeliefSystemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bs, err := h.svc.Create(r.Context(), req.Name, domain.ForkingStrategy(req.Strategy), req.Rules)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBeliefSystemNameEmpty),
			errors.Is(err, service.ErrInvalidForkingStrategy),
			errors.Is(err, domain.ErrConditionShape),
			errors.Is(err, domain.ErrQuantifierChild),
			errors.Is(err, domain.ErrUnknownComparator),
			errors.Is(err, domain.ErrUnknownConditionOp):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create belief system")
		}
		return
	}

	writeJSON(w, http.StatusCreated, beliefSystemView(bs))
}

func (h *BeliefHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid belief system id")
		return
	}

	bs, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrBeliefSystemNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get belief system")
		return
	}

	writeJSON(w, http.StatusOK, beliefSystemView(bs))
}

func (h *BeliefHandler) AddRule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid belief system id")
		return
	}

	var rule domain.Rule
	if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.AddRule(r.Context(), id, rule); err != nil {
		switch {
		case errors.Is(err, service.ErrBeliefSystemNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrConditionShape),
			errors.Is(err, domain.ErrQuantifierChild),
			errors.Is(err, domain.ErrUnknownComparator),
			errors.Is(err, domain.ErrUnknownConditionOp):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to add rule")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

type simulateRequest struct {
	Statements []domain.Statement `json:"statements"`
}

type simulateResponse struct {
	SimulationID uuid.UUID          `json:"simulation_id"`
	DerivedFacts []domain.Statement `json:"derived_facts"`
	AppliedRules []domain.Rule      `json:"applied_rules"`
	ForkID       *uuid.UUID         `json:"fork_id,omitempty"`
	Converged    bool               `json:"converged"`
	WorldState   map[string]any     `json:"world_state"`
}

func (h *BeliefHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid belief system id")
		return
	}

	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, record, err := h.svc.Simulate(r.Context(), id, req.Statements)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBeliefSystemNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrNoStatements):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to simulate")
		}
		return
	}

	state, err := h.svc.WorldState(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read world state")
		return
	}

	writeJSON(w, http.StatusOK, simulateResponse{
		SimulationID: record.ID,
		DerivedFacts: result.DerivedFacts,
		AppliedRules: result.AppliedRules,
		ForkID:       record.ForkedBeliefSystem,
		Converged:    result.Converged,
		WorldState:   state,
	})
}

func (h *BeliefHandler) Statements(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid belief system id")
		return
	}

	statements, err := h.svc.Statements(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrBeliefSystemNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list statements")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"statements": statements})
}

func (h *BeliefHandler) Contradictions(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid belief system id")
		return
	}

	runtime, latent, err := h.svc.Contradictions(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrBeliefSystemNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list contradictions")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"contradictions":        runtime,
		"latent_contradictions": latent,
	})
}

func (h *BeliefHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid belief system id")
		return
	}

	history, err := h.svc.History(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrBeliefSystemNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list simulations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"simulations": history})
}
