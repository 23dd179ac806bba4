package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "tripmate-backend/errors"
	"tripmate-backend/services"
)

func (h *Handlers) CreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req services.CreateExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	expense, err := h.expenseService.CreateExpense(r.Context(), userID, req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, expense)
}

func (h *Handlers) GetExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	expense, err := h.expenseService.GetExpense(r.Context(), userID, chi.URLParam(r, "expenseID"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, expense)
}

func (h *Handlers) GetExpenses(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	expenses, err := h.expenseService.ListGroupExpenses(r.Context(), userID, chi.URLParam(r, "groupID"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, expenses)
}

func (h *Handlers) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req services.UpdateExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	expense, err := h.expenseService.UpdateExpense(r.Context(), userID, chi.URLParam(r, "expenseID"), req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, expense)
}

func (h *Handlers) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.expenseService.DeleteExpense(r.Context(), userID, chi.URLParam(r, "expenseID")); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handlers) SettleSplit(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	split, err := h.settlementService.SettleSplit(r.Context(), userID, chi.URLParam(r, "splitID"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, split)
}

func (h *Handlers) UnsettleSplit(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	split, err := h.settlementService.UnsettleSplit(r.Context(), userID, chi.URLParam(r, "splitID"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, split)
}

func (h *Handlers) SettleUp(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req struct {
		UserID string `json:"user_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}
	if req.UserID == "" {
		handleError(w, apperrors.MissingRequiredField("user_id"))
		return
	}

	settled, err := h.settlementService.SettleUpWithMember(r.Context(), userID, chi.URLParam(r, "groupID"), req.UserID)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"splits_settled": settled})
}

func (h *Handlers) GetBalances(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	balances, err := h.settlementService.GetGroupBalances(r.Context(), userID, chi.URLParam(r, "groupID"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, balances)
}

func (h *Handlers) GetSettlementSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	suggestions, err := h.settlementService.SuggestSettlements(r.Context(), userID, chi.URLParam(r, "groupID"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, suggestions)
}

func (h *Handlers) PreviewAgeSplit(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req services.AgeSplitPreviewRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}
	if req.PricingMode == "" {
		req.PricingMode = services.PricingAgeBased
	}

	preview, err := h.expenseService.PreviewAgeSplit(r.Context(), userID, chi.URLParam(r, "groupID"), req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, preview)
}

func (h *Handlers) CreateGuest(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	guest, err := h.expenseService.CreateGuest(r.Context(), userID, chi.URLParam(r, "groupID"), req.Name)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, guest)
}

func (h *Handlers) GetGuests(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	guests, err := h.expenseService.ListGuests(r.Context(), userID, chi.URLParam(r, "groupID"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, guests)
}

func (h *Handlers) DeleteGuest(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.expenseService.DeleteGuest(r.Context(), userID, chi.URLParam(r, "guestID")); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
