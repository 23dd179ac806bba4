package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tripmate-backend/services"
)

// GetGroups also mirrors the caller's identity claims into the users table,
// since listing groups is the first call every client makes after login.
func (h *Handlers) GetGroups(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}
	if email, err := getUserEmail(r); err == nil {
		if err := h.groupService.SyncUser(r.Context(), userID, email, getUserName(r)); err != nil {
			handleError(w, err)
			return
		}
	}

	groups, err := h.groupService.ListMyGroups(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

func (h *Handlers) CreateGroup(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}
	if email, err := getUserEmail(r); err == nil {
		if err := h.groupService.SyncUser(r.Context(), userID, email, getUserName(r)); err != nil {
			handleError(w, err)
			return
		}
	}

	var req services.CreateGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	group, err := h.groupService.CreateGroup(r.Context(), userID, req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, group)
}

func (h *Handlers) GetGroup(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	group, err := h.groupService.GetGroup(r.Context(), userID, chi.URLParam(r, "groupID"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

func (h *Handlers) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req services.CreateGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	group, err := h.groupService.UpdateGroup(r.Context(), userID, chi.URLParam(r, "groupID"), req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

func (h *Handlers) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.groupService.DeleteGroup(r.Context(), userID, chi.URLParam(r, "groupID")); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handlers) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.groupService.LeaveGroup(r.Context(), userID, chi.URLParam(r, "groupID")); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

func (h *Handlers) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	err = h.groupService.RemoveMember(r.Context(), userID,
		chi.URLParam(r, "groupID"), chi.URLParam(r, "userID"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *Handlers) InviteMember(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	inv, err := h.groupService.InviteMember(r.Context(), userID, getUserName(r),
		chi.URLParam(r, "groupID"), req.Email)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, inv)
}

func (h *Handlers) GetInvitations(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	invitations, err := h.groupService.ListInvitations(r.Context(), userID, chi.URLParam(r, "groupID"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, invitations)
}

func (h *Handlers) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}
	email, err := getUserEmail(r)
	if err != nil {
		handleError(w, err)
		return
	}
	if err := h.groupService.SyncUser(r.Context(), userID, email, getUserName(r)); err != nil {
		handleError(w, err)
		return
	}

	group, err := h.groupService.AcceptInvitation(r.Context(), userID, email, chi.URLParam(r, "token"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

func (h *Handlers) RevokeInvitation(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.groupService.RevokeInvitation(r.Context(), userID, chi.URLParam(r, "token")); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

func (h *Handlers) AddDependent(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req services.AddDependentRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, err)
		return
	}

	dep, err := h.groupService.AddDependent(r.Context(), userID, chi.URLParam(r, "groupID"), req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dep)
}

func (h *Handlers) GetDependents(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	dependents, err := h.groupService.ListDependents(r.Context(), userID, chi.URLParam(r, "groupID"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dependents)
}

func (h *Handlers) DeleteDependent(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.groupService.DeleteDependent(r.Context(), userID, chi.URLParam(r, "dependentID")); err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
