package services

import (
	"context"

	apperrors "tripmate-backend/errors"
	"tripmate-backend/repository"
)

// RequireGroupMembership verifies the user belongs to the group before any
// group-scoped read or write proceeds.
func RequireGroupMembership(ctx context.Context, groupRepo repository.GroupRepository, groupID, userID string) error {
	isMember, err := groupRepo.IsMember(ctx, groupID, userID)
	if err != nil {
		return apperrors.DatabaseError("checking group membership", err)
	}
	if !isMember {
		return apperrors.NotGroupMember()
	}
	return nil
}
