package errors

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorCode string

const (
	CodeUnauthorized   ErrorCode = "AUTH_001"
	CodeTokenExpired   ErrorCode = "AUTH_002"
	CodeTokenInvalid   ErrorCode = "AUTH_003"
	CodeNotGroupMember ErrorCode = "AUTH_004"
	CodeNotOwner       ErrorCode = "AUTH_005"

	CodeInvalidRequest       ErrorCode = "VALIDATION_001"
	CodeMissingRequiredField ErrorCode = "VALIDATION_002"
	CodeInvalidAmount        ErrorCode = "VALIDATION_003"
	CodeAmountMismatch       ErrorCode = "VALIDATION_004"
	CodeInvalidUUID          ErrorCode = "VALIDATION_005"

	CodeNotFound             ErrorCode = "NOT_FOUND_001"
	CodeGroupNotFound        ErrorCode = "NOT_FOUND_002"
	CodeExpenseNotFound      ErrorCode = "NOT_FOUND_003"
	CodeSplitNotFound        ErrorCode = "NOT_FOUND_004"
	CodePollNotFound         ErrorCode = "NOT_FOUND_005"
	CodeInvitationNotFound   ErrorCode = "NOT_FOUND_006"

	CodeConflict       ErrorCode = "CONFLICT_001"
	CodeDuplicateEntry ErrorCode = "CONFLICT_002"
	CodeAlreadyMember  ErrorCode = "CONFLICT_003"
	CodeAlreadyDrawn   ErrorCode = "CONFLICT_004"

	CodeBusinessError ErrorCode = "BUSINESS_001"
	CodeGuestInUse    ErrorCode = "BUSINESS_002"

	CodeDatabaseError ErrorCode = "DATABASE_001"

	CodeStorageError   ErrorCode = "EXTERNAL_001"
	CodeAIServiceError ErrorCode = "EXTERNAL_002"

	CodeInternalError ErrorCode = "INTERNAL_001"
)

type ErrorType int

const (
	ErrorTypeUnauthorized ErrorType = iota
	ErrorTypeForbidden
	ErrorTypeBadRequest
	ErrorTypeNotFound
	ErrorTypeConflict
	ErrorTypeUnprocessable
	ErrorTypeInternal
	ErrorTypeServiceUnavailable
)

type AppError struct {
	Type    ErrorType `json:"-"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func TokenExpired() *AppError {
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Code:    CodeTokenExpired,
		Message: "Your session has expired. Please log in again.",
	}
}

func TokenInvalid() *AppError {
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Code:    CodeTokenInvalid,
		Message: "Invalid authentication token.",
	}
}

func NotGroupMember() *AppError {
	return &AppError{
		Type:    ErrorTypeForbidden,
		Code:    CodeNotGroupMember,
		Message: "You are not a member of this group.",
	}
}

func NotOwner(resourceType string) *AppError {
	return &AppError{
		Type:    ErrorTypeForbidden,
		Code:    CodeNotOwner,
		Message: fmt.Sprintf("Only the creator of this %s can do that.", resourceType),
	}
}

func InvalidRequest(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Code:    CodeInvalidRequest,
		Message: message,
	}
}

func MissingRequiredField(fieldName string) *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Code:    CodeMissingRequiredField,
		Message: fmt.Sprintf("%s is required.", fieldName),
	}
}

func InvalidAmount(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Code:    CodeInvalidAmount,
		Message: message,
	}
}

func AmountMismatch(partTotal, expectedTotal float64, kind string) *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Code:    CodeAmountMismatch,
		Message: fmt.Sprintf("Sum of %s values (%.2f) does not equal the expected total (%.2f).", kind, partTotal, expectedTotal),
	}
}

func InvalidUUID(fieldName string) *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Code:    CodeInvalidUUID,
		Message: fmt.Sprintf("Invalid %s format. Must be a valid UUID.", fieldName),
	}
}

func NotFound(resourceType string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found.", resourceType),
	}
}

func GroupNotFound() *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Code:    CodeGroupNotFound,
		Message: "Group not found.",
	}
}

func ExpenseNotFound() *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Code:    CodeExpenseNotFound,
		Message: "Expense not found.",
	}
}

func SplitNotFound() *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Code:    CodeSplitNotFound,
		Message: "Expense split not found.",
	}
}

func PollNotFound() *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Code:    CodePollNotFound,
		Message: "Poll not found.",
	}
}

func InvitationNotFound() *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Code:    CodeInvitationNotFound,
		Message: "Invitation not found or no longer valid.",
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Code:    CodeConflict,
		Message: message,
	}
}

func DuplicateEntry(resourceType string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Code:    CodeDuplicateEntry,
		Message: fmt.Sprintf("%s already exists.", resourceType),
	}
}

func AlreadyMember() *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Code:    CodeAlreadyMember,
		Message: "User is already a member of this group.",
	}
}

func AlreadyDrawn() *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Code:    CodeAlreadyDrawn,
		Message: "This lottery has already been drawn.",
	}
}

func BusinessError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnprocessable,
		Code:    CodeBusinessError,
		Message: message,
	}
}

func GuestInUse() *AppError {
	return &AppError{
		Type:    ErrorTypeUnprocessable,
		Code:    CodeGuestInUse,
		Message: "This guest still participates in expense splits.",
		Details: "Remove or reassign their splits before deleting the guest.",
	}
}

func DatabaseError(operation string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Code:    CodeDatabaseError,
		Message: "A database error occurred. Please try again.",
		Details: operation,
		Err:     err,
	}
}

func StorageError(operation string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Code:    CodeStorageError,
		Message: "Failed to process file storage. Please try again.",
		Details: operation,
		Err:     err,
	}
}

func AIServiceError(err error) *AppError {
	return &AppError{
		Type:    ErrorTypeServiceUnavailable,
		Code:    CodeAIServiceError,
		Message: "Receipt scanning is temporarily unavailable. Please try again later.",
		Err:     err,
	}
}

func InternalError(err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Code:    CodeInternalError,
		Message: "An unexpected error occurred. Please try again.",
		Err:     err,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func GetHTTPStatus(errType ErrorType) int {
	switch errType {
	case ErrorTypeUnauthorized:
		return 401
	case ErrorTypeForbidden:
		return 403
	case ErrorTypeBadRequest:
		return 400
	case ErrorTypeNotFound:
		return 404
	case ErrorTypeConflict:
		return 409
	case ErrorTypeUnprocessable:
		return 422
	case ErrorTypeServiceUnavailable:
		return 503
	default:
		return 500
	}
}

func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "no rows") || strings.Contains(errStr, "not found")
}

func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "unique constraint")
}
