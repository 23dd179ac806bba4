package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tripmate-backend/services"
)

func (h *Handlers) CreateItineraryItem(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req services.ItineraryItemRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	item, err := h.itineraryService.CreateItem(r.Context(), userID, chi.URLParam(r, "groupID"), req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

func (h *Handlers) GetItinerary(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	items, err := h.itineraryService.ListItems(r.Context(), userID, chi.URLParam(r, "groupID"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handlers) UpdateItineraryItem(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req services.ItineraryItemRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	item, err := h.itineraryService.UpdateItem(r.Context(), userID, chi.URLParam(r, "itemID"), req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *Handlers) DeleteItineraryItem(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.itineraryService.DeleteItem(r.Context(), userID, chi.URLParam(r, "itemID")); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
