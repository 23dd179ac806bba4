package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tripmate-backend/services"
)

func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req services.CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), userID, chi.URLParam(r, "groupID"), req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

func (h *Handlers) GetTasks(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	tasks, err := h.taskService.ListTasks(r.Context(), userID, chi.URLParam(r, "groupID"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req services.UpdateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), userID, chi.URLParam(r, "taskID"), req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (h *Handlers) MoveTask(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req struct {
		Position int `json:"position"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	if err := h.taskService.MoveTask(r.Context(), userID, chi.URLParam(r, "taskID"), req.Position); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "moved"})
}

func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), userID, chi.URLParam(r, "taskID")); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
