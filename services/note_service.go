package services

import (
	"context"

	"github.com/google/uuid"

	apperrors "tripmate-backend/errors"
	"tripmate-backend/models"
	"tripmate-backend/repository"
)

type NoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type BringItemRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type NoteService interface {
	CreateNote(ctx context.Context, userID, groupID string, req NoteRequest) (*models.SharedNote, error)
	ListNotes(ctx context.Context, userID, groupID string) ([]models.SharedNote, error)
	UpdateNote(ctx context.Context, userID, noteID string, req NoteRequest) (*models.SharedNote, error)
	DeleteNote(ctx context.Context, userID, noteID string) error

	CreateBringList(ctx context.Context, userID, groupID, name string) (*models.BringList, error)
	ListBringLists(ctx context.Context, userID, groupID string) ([]models.BringList, error)
	DeleteBringList(ctx context.Context, userID, listID string) error

	AddBringItem(ctx context.Context, userID, listID string, req BringItemRequest) (*models.BringItem, error)
	ClaimBringItem(ctx context.Context, userID, itemID string) (*models.BringItem, error)
	UnclaimBringItem(ctx context.Context, userID, itemID string) (*models.BringItem, error)
	DeleteBringItem(ctx context.Context, userID, itemID string) error
}

type noteService struct {
	noteRepo  repository.NoteRepository
	groupRepo repository.GroupRepository
}

func NewNoteService(noteRepo repository.NoteRepository, groupRepo repository.GroupRepository) NoteService {
	return &noteService{noteRepo: noteRepo, groupRepo: groupRepo}
}

func (s *noteService) CreateNote(ctx context.Context, userID, groupID string, req NoteRequest) (*models.SharedNote, error) {
	if req.Title == "" {
		return nil, apperrors.MissingRequiredField("title")
	}
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}

	note := &models.SharedNote{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		Title:     req.Title,
		Content:   req.Content,
		CreatedBy: userID,
	}
	if err := s.noteRepo.CreateNote(ctx, note); err != nil {
		return nil, apperrors.DatabaseError("creating note", err)
	}
	return note, nil
}

func (s *noteService) ListNotes(ctx context.Context, userID, groupID string) ([]models.SharedNote, error) {
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}
	notes, err := s.noteRepo.GetNotesByGroupID(ctx, groupID)
	if err != nil {
		return nil, apperrors.DatabaseError("listing notes", err)
	}
	return notes, nil
}

// UpdateNote is open to any member; shared notes are collaborative.
func (s *noteService) UpdateNote(ctx context.Context, userID, noteID string, req NoteRequest) (*models.SharedNote, error) {
	note, err := s.noteRepo.GetNoteByID(ctx, noteID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.NotFound("Note")
		}
		return nil, apperrors.DatabaseError("getting note", err)
	}
	if err := RequireGroupMembership(ctx, s.groupRepo, note.GroupID, userID); err != nil {
		return nil, err
	}
	if req.Title == "" {
		return nil, apperrors.MissingRequiredField("title")
	}

	note.Title = req.Title
	note.Content = req.Content
	if err := s.noteRepo.UpdateNote(ctx, note); err != nil {
		return nil, apperrors.DatabaseError("updating note", err)
	}
	return note, nil
}

func (s *noteService) DeleteNote(ctx context.Context, userID, noteID string) error {
	note, err := s.noteRepo.GetNoteByID(ctx, noteID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return apperrors.NotFound("Note")
		}
		return apperrors.DatabaseError("getting note", err)
	}
	if err := RequireGroupMembership(ctx, s.groupRepo, note.GroupID, userID); err != nil {
		return err
	}
	if note.CreatedBy != userID {
		return apperrors.NotOwner("note")
	}
	if err := s.noteRepo.DeleteNote(ctx, noteID); err != nil {
		return apperrors.DatabaseError("deleting note", err)
	}
	return nil
}

func (s *noteService) CreateBringList(ctx context.Context, userID, groupID, name string) (*models.BringList, error) {
	if name == "" {
		return nil, apperrors.MissingRequiredField("name")
	}
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}

	list := &models.BringList{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		Name:      name,
		CreatedBy: userID,
	}
	if err := s.noteRepo.CreateBringList(ctx, list); err != nil {
		return nil, apperrors.DatabaseError("creating bring list", err)
	}
	return list, nil
}

func (s *noteService) ListBringLists(ctx context.Context, userID, groupID string) ([]models.BringList, error) {
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}
	lists, err := s.noteRepo.GetBringListsByGroupID(ctx, groupID)
	if err != nil {
		return nil, apperrors.DatabaseError("listing bring lists", err)
	}
	return lists, nil
}

func (s *noteService) DeleteBringList(ctx context.Context, userID, listID string) error {
	list, err := s.getBringListForMember(ctx, userID, listID)
	if err != nil {
		return err
	}
	if list.CreatedBy != userID {
		return apperrors.NotOwner("bring list")
	}
	if err := s.noteRepo.DeleteBringList(ctx, listID); err != nil {
		return apperrors.DatabaseError("deleting bring list", err)
	}
	return nil
}

func (s *noteService) getBringListForMember(ctx context.Context, userID, listID string) (*models.BringList, error) {
	list, err := s.noteRepo.GetBringListByID(ctx, listID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.NotFound("Bring list")
		}
		return nil, apperrors.DatabaseError("getting bring list", err)
	}
	if err := RequireGroupMembership(ctx, s.groupRepo, list.GroupID, userID); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *noteService) AddBringItem(ctx context.Context, userID, listID string, req BringItemRequest) (*models.BringItem, error) {
	if req.Name == "" {
		return nil, apperrors.MissingRequiredField("name")
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}
	if _, err := s.getBringListForMember(ctx, userID, listID); err != nil {
		return nil, err
	}

	item := &models.BringItem{
		ID:       uuid.NewString(),
		ListID:   listID,
		Name:     req.Name,
		Quantity: req.Quantity,
	}
	if err := s.noteRepo.CreateBringItem(ctx, item); err != nil {
		return nil, apperrors.DatabaseError("creating bring item", err)
	}
	return item, nil
}

func (s *noteService) getBringItemForMember(ctx context.Context, userID, itemID string) (*models.BringItem, error) {
	item, err := s.noteRepo.GetBringItemByID(ctx, itemID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.NotFound("Bring item")
		}
		return nil, apperrors.DatabaseError("getting bring item", err)
	}
	if _, err := s.getBringListForMember(ctx, userID, item.ListID); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *noteService) ClaimBringItem(ctx context.Context, userID, itemID string) (*models.BringItem, error) {
	item, err := s.getBringItemForMember(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if item.ClaimedBy != nil {
		if *item.ClaimedBy == userID {
			return item, nil
		}
		return nil, apperrors.Conflict("Someone else already claimed this item.")
	}

	if err := s.noteRepo.SetBringItemClaim(ctx, itemID, &userID); err != nil {
		return nil, apperrors.DatabaseError("claiming bring item", err)
	}
	item.ClaimedBy = &userID
	return item, nil
}

func (s *noteService) UnclaimBringItem(ctx context.Context, userID, itemID string) (*models.BringItem, error) {
	item, err := s.getBringItemForMember(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if item.ClaimedBy == nil {
		return item, nil
	}
	if *item.ClaimedBy != userID {
		return nil, apperrors.NotOwner("claim")
	}

	if err := s.noteRepo.SetBringItemClaim(ctx, itemID, nil); err != nil {
		return nil, apperrors.DatabaseError("unclaiming bring item", err)
	}
	item.ClaimedBy = nil
	return item, nil
}

func (s *noteService) DeleteBringItem(ctx context.Context, userID, itemID string) error {
	if _, err := s.getBringItemForMember(ctx, userID, itemID); err != nil {
		return err
	}
	if err := s.noteRepo.DeleteBringItem(ctx, itemID); err != nil {
		return apperrors.DatabaseError("deleting bring item", err)
	}
	return nil
}
