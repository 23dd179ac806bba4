package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tripmate-backend/services"
)

func (h *Handlers) CreatePool(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req services.CreatePoolRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	pool, err := h.poolService.CreatePool(r.Context(), userID, chi.URLParam(r, "groupID"), req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, pool)
}

func (h *Handlers) GetPools(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	pools, err := h.poolService.ListPools(r.Context(), userID, chi.URLParam(r, "groupID"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pools)
}

func (h *Handlers) GetPool(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	pool, err := h.poolService.GetPool(r.Context(), userID, chi.URLParam(r, "poolID"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pool)
}

func (h *Handlers) DeletePool(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.poolService.DeletePool(r.Context(), userID, chi.URLParam(r, "poolID")); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handlers) Contribute(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	contribution, err := h.poolService.Contribute(r.Context(), userID, chi.URLParam(r, "poolID"), req.Amount)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, contribution)
}

func (h *Handlers) ReviewContribution(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req struct {
		Approve bool `json:"approve"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	contribution, err := h.poolService.ReviewContribution(r.Context(), userID, chi.URLParam(r, "contributionID"), req.Approve)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, contribution)
}
