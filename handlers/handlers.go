package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "tripmate-backend/errors"
	"tripmate-backend/middleware"
	"tripmate-backend/services"
)

type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type Handlers struct {
	groupService        services.GroupService
	expenseService      services.ExpenseService
	settlementService   services.SettlementService
	pollService         services.PollService
	taskService         services.TaskService
	itineraryService    services.ItineraryService
	noteService         services.NoteService
	poolService         services.PoolService
	notificationService services.NotificationService
	receiptService      services.ReceiptService
}

func NewHandlers(
	groupService services.GroupService,
	expenseService services.ExpenseService,
	settlementService services.SettlementService,
	pollService services.PollService,
	taskService services.TaskService,
	itineraryService services.ItineraryService,
	noteService services.NoteService,
	poolService services.PoolService,
	notificationService services.NotificationService,
	receiptService services.ReceiptService,
) *Handlers {
	return &Handlers{
		groupService:        groupService,
		expenseService:      expenseService,
		settlementService:   settlementService,
		pollService:         pollService,
		taskService:         taskService,
		itineraryService:    itineraryService,
		noteService:         noteService,
		poolService:         poolService,
		notificationService: notificationService,
		receiptService:      receiptService,
	}
}

func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/groups", func(r chi.Router) {
		r.Get("/", h.GetGroups)
		r.Post("/", h.CreateGroup)
		r.Get("/{groupID}", h.GetGroup)
		r.Put("/{groupID}", h.UpdateGroup)
		r.Delete("/{groupID}", h.DeleteGroup)
		r.Post("/{groupID}/leave", h.LeaveGroup)
		r.Delete("/{groupID}/members/{userID}", h.RemoveMember)

		r.Post("/{groupID}/invitations", h.InviteMember)
		r.Get("/{groupID}/invitations", h.GetInvitations)

		r.Post("/{groupID}/dependents", h.AddDependent)
		r.Get("/{groupID}/dependents", h.GetDependents)

		r.Get("/{groupID}/expenses", h.GetExpenses)
		r.Get("/{groupID}/balances", h.GetBalances)
		r.Get("/{groupID}/settlements", h.GetSettlementSuggestions)
		r.Post("/{groupID}/settle-up", h.SettleUp)
		r.Post("/{groupID}/age-split", h.PreviewAgeSplit)

		r.Post("/{groupID}/guests", h.CreateGuest)
		r.Get("/{groupID}/guests", h.GetGuests)

		r.Get("/{groupID}/polls", h.GetPolls)
		r.Post("/{groupID}/polls", h.CreatePoll)

		r.Get("/{groupID}/tasks", h.GetTasks)
		r.Post("/{groupID}/tasks", h.CreateTask)

		r.Get("/{groupID}/itinerary", h.GetItinerary)
		r.Post("/{groupID}/itinerary", h.CreateItineraryItem)

		r.Get("/{groupID}/notes", h.GetNotes)
		r.Post("/{groupID}/notes", h.CreateNote)

		r.Get("/{groupID}/bring-lists", h.GetBringLists)
		r.Post("/{groupID}/bring-lists", h.CreateBringList)

		r.Get("/{groupID}/pools", h.GetPools)
		r.Post("/{groupID}/pools", h.CreatePool)

		r.Post("/{groupID}/receipts", h.UploadReceipt)
		r.Post("/{groupID}/documents", h.UploadDocument)
	})

	r.Route("/invitations", func(r chi.Router) {
		r.Post("/{token}/accept", h.AcceptInvitation)
		r.Post("/{token}/revoke", h.RevokeInvitation)
	})

	r.Route("/dependents", func(r chi.Router) {
		r.Delete("/{dependentID}", h.DeleteDependent)
	})

	r.Route("/guests", func(r chi.Router) {
		r.Delete("/{guestID}", h.DeleteGuest)
	})

	r.Route("/expenses", func(r chi.Router) {
		r.Post("/", h.CreateExpense)
		r.Get("/{expenseID}", h.GetExpense)
		r.Put("/{expenseID}", h.UpdateExpense)
		r.Delete("/{expenseID}", h.DeleteExpense)
	})

	r.Route("/splits", func(r chi.Router) {
		r.Post("/{splitID}/settle", h.SettleSplit)
		r.Post("/{splitID}/unsettle", h.UnsettleSplit)
	})

	r.Route("/polls", func(r chi.Router) {
		r.Get("/{pollID}", h.GetPoll)
		r.Delete("/{pollID}", h.DeletePoll)
		r.Post("/{pollID}/votes", h.CastVote)
		r.Get("/{pollID}/results", h.GetPollResults)
		r.Post("/{pollID}/draw", h.DrawLottery)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Put("/{taskID}", h.UpdateTask)
		r.Post("/{taskID}/move", h.MoveTask)
		r.Delete("/{taskID}", h.DeleteTask)
	})

	r.Route("/itinerary", func(r chi.Router) {
		r.Put("/{itemID}", h.UpdateItineraryItem)
		r.Delete("/{itemID}", h.DeleteItineraryItem)
	})

	r.Route("/notes", func(r chi.Router) {
		r.Put("/{noteID}", h.UpdateNote)
		r.Delete("/{noteID}", h.DeleteNote)
	})

	r.Route("/bring-lists", func(r chi.Router) {
		r.Delete("/{listID}", h.DeleteBringList)
		r.Post("/{listID}/items", h.AddBringItem)
	})

	r.Route("/bring-items", func(r chi.Router) {
		r.Post("/{itemID}/claim", h.ClaimBringItem)
		r.Post("/{itemID}/unclaim", h.UnclaimBringItem)
		r.Delete("/{itemID}", h.DeleteBringItem)
	})

	r.Route("/pools", func(r chi.Router) {
		r.Get("/{poolID}", h.GetPool)
		r.Delete("/{poolID}", h.DeletePool)
		r.Post("/{poolID}/contributions", h.Contribute)
	})

	r.Route("/contributions", func(r chi.Router) {
		r.Post("/{contributionID}/review", h.ReviewContribution)
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.GetNotifications)
		r.Get("/unread-count", h.GetUnreadCount)
		r.Post("/{notificationID}/read", h.MarkNotificationRead)
		r.Post("/read-all", h.MarkAllNotificationsRead)
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Error("Failed to encode JSON response", zap.Error(err))
	}
}

func handleError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	if appErr, ok := apperrors.AsAppError(err); ok {
		status := apperrors.GetHTTPStatus(appErr.Type)

		if status >= 500 {
			zap.L().Error("App Error (Internal)",
				zap.String("code", string(appErr.Code)),
				zap.Error(appErr.Err))
		} else {
			zap.L().Debug("App Error (Client)",
				zap.String("code", string(appErr.Code)),
				zap.String("message", appErr.Message))
		}

		respondJSON(w, status, ErrorResponse{
			Error:   appErr.Message,
			Code:    string(appErr.Code),
			Details: appErr.Details,
		})
		return
	}

	zap.L().Error("Non-AppError returned (bug)",
		zap.Error(err),
		zap.String("error_type", fmt.Sprintf("%T", err)))

	respondJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: "An unexpected error occurred. Please try again later.",
		Code:  string(apperrors.CodeInternalError),
	})
}

func getUserID(r *http.Request) (string, error) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		return "", apperrors.Unauthorized("User ID not found in authentication context")
	}
	return userID, nil
}

func getUserEmail(r *http.Request) (string, error) {
	email, ok := middleware.GetUserEmail(r.Context())
	if !ok {
		return "", apperrors.Unauthorized("User email not found in authentication context")
	}
	return email, nil
}

func getUserName(r *http.Request) string {
	name, _ := middleware.GetUserName(r.Context())
	return name
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.InvalidRequest("Invalid JSON request body.")
	}
	return nil
}
