package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tripmate-backend/services"
)

func (h *Handlers) CreateNote(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req services.NoteRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	note, err := h.noteService.CreateNote(r.Context(), userID, chi.URLParam(r, "groupID"), req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, note)
}

func (h *Handlers) GetNotes(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	notes, err := h.noteService.ListNotes(r.Context(), userID, chi.URLParam(r, "groupID"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, notes)
}

func (h *Handlers) UpdateNote(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req services.NoteRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	note, err := h.noteService.UpdateNote(r.Context(), userID, chi.URLParam(r, "noteID"), req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, note)
}

func (h *Handlers) DeleteNote(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.noteService.DeleteNote(r.Context(), userID, chi.URLParam(r, "noteID")); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handlers) CreateBringList(w http.ResponseWriter, r *http.Request) {
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

	list, err := h.noteService.CreateBringList(r.Context(), userID, chi.URLParam(r, "groupID"), req.Name)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, list)
}

func (h *Handlers) GetBringLists(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	lists, err := h.noteService.ListBringLists(r.Context(), userID, chi.URLParam(r, "groupID"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, lists)
}

func (h *Handlers) DeleteBringList(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.noteService.DeleteBringList(r.Context(), userID, chi.URLParam(r, "listID")); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handlers) AddBringItem(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req services.BringItemRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	item, err := h.noteService.AddBringItem(r.Context(), userID, chi.URLParam(r, "listID"), req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

func (h *Handlers) ClaimBringItem(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	item, err := h.noteService.ClaimBringItem(r.Context(), userID, chi.URLParam(r, "itemID"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *Handlers) UnclaimBringItem(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	item, err := h.noteService.UnclaimBringItem(r.Context(), userID, chi.URLParam(r, "itemID"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *Handlers) DeleteBringItem(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.noteService.DeleteBringItem(r.Context(), userID, chi.URLParam(r, "itemID")); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
