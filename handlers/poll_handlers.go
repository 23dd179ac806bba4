package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tripmate-backend/services"
)

func (h *Handlers) CreatePoll(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req services.CreatePollRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}
	req.GroupID = chi.URLParam(r, "groupID")

	poll, err := h.pollService.CreatePoll(r.Context(), userID, req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, poll)
}

func (h *Handlers) GetPolls(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	polls, err := h.pollService.ListGroupPolls(r.Context(), userID, chi.URLParam(r, "groupID"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, polls)
}

func (h *Handlers) GetPoll(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	poll, err := h.pollService.GetPoll(r.Context(), userID, chi.URLParam(r, "pollID"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, poll)
}

func (h *Handlers) DeletePoll(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.pollService.DeletePoll(r.Context(), userID, chi.URLParam(r, "pollID")); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handlers) CastVote(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req services.CastVoteRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	if err := h.pollService.CastVote(r.Context(), userID, chi.URLParam(r, "pollID"), req); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (h *Handlers) GetPollResults(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	results, err := h.pollService.GetResults(r.Context(), userID, chi.URLParam(r, "pollID"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

func (h *Handlers) DrawLottery(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	result, err := h.pollService.DrawLottery(r.Context(), userID, chi.URLParam(r, "pollID"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}
