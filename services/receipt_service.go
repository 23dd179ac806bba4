package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	apperrors "tripmate-backend/errors"
	"tripmate-backend/models"
	"tripmate-backend/repository"
	"tripmate-backend/storage"
)

const receiptPrompt = `You are a receipt parser. Extract the line items and totals from this receipt image.
Respond with ONLY a JSON object in this exact shape, no markdown fences, no commentary:
{
  "items": [{"name": "item name", "price": 0.00}],
  "subtotal": 0.00,
  "tax": 0.00,
  "total": 0.00
}
Use 0 for any value not present on the receipt. Prices are plain numbers without currency symbols.`

type ReceiptService interface {
	ScanReceipt(ctx context.Context, userID, groupID string, imageData []byte, contentType string) (*models.ReceiptParseResult, error)
	UploadReceipt(ctx context.Context, userID, groupID string, body io.Reader, contentType string) (string, error)
	UploadDocument(ctx context.Context, userID, groupID string, body io.Reader, contentType string) (string, error)
}

type receiptService struct {
	groupRepo    repository.GroupRepository
	store        storage.Storage
	apiKey       string
	receiptsBkt  string
	documentsBkt string
}

func NewReceiptService(
	groupRepo repository.GroupRepository,
	store storage.Storage,
	geminiAPIKey string,
	receiptsBucket, documentsBucket string,
) ReceiptService {
	return &receiptService{
		groupRepo:    groupRepo,
		store:        store,
		apiKey:       geminiAPIKey,
		receiptsBkt:  receiptsBucket,
		documentsBkt: documentsBucket,
	}
}

func (s *receiptService) ScanReceipt(ctx context.Context, userID, groupID string, imageData []byte, contentType string) (*models.ReceiptParseResult, error) {
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}
	if s.apiKey == "" {
		return nil, apperrors.AIServiceError(fmt.Errorf("gemini api key not configured"))
	}
	if len(imageData) == 0 {
		return nil, apperrors.InvalidRequest("Receipt image is empty.")
	}
	ext, err := storage.ValidateImageType(contentType)
	if err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(s.apiKey))
	if err != nil {
		return nil, apperrors.AIServiceError(fmt.Errorf("creating genai client: %w", err))
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.0-flash")
	resp, err := model.GenerateContent(ctx,
		genai.ImageData(strings.TrimPrefix(ext, "."), imageData),
		genai.Text(receiptPrompt),
	)
	if err != nil {
		zap.L().Error("Receipt scan failed", zap.String("group_id", groupID), zap.Error(err))
		return nil, apperrors.AIServiceError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, apperrors.AIServiceError(fmt.Errorf("empty model response"))
	}

	var raw strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			raw.WriteString(string(text))
		}
	}

	var result models.ReceiptParseResult
	if err := json.Unmarshal([]byte(cleanJSONResponse(raw.String())), &result); err != nil {
		zap.L().Warn("Receipt scan returned unparseable JSON",
			zap.String("group_id", groupID), zap.Error(err))
		return nil, apperrors.AIServiceError(fmt.Errorf("parsing model response: %w", err))
	}
	return &result, nil
}

// cleanJSONResponse strips markdown code fences the model sometimes adds
// despite the prompt.
func cleanJSONResponse(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

func (s *receiptService) UploadReceipt(ctx context.Context, userID, groupID string, body io.Reader, contentType string) (string, error) {
	ext, err := storage.ValidateImageType(contentType)
	if err != nil {
		return "", err
	}
	return s.upload(ctx, userID, groupID, s.receiptsBkt, ext, contentType, body)
}

func (s *receiptService) UploadDocument(ctx context.Context, userID, groupID string, body io.Reader, contentType string) (string, error) {
	ext, err := storage.ValidateDocumentType(contentType)
	if err != nil {
		return "", err
	}
	return s.upload(ctx, userID, groupID, s.documentsBkt, ext, contentType, body)
}

func (s *receiptService) upload(ctx context.Context, userID, groupID, bucket, ext, contentType string, body io.Reader) (string, error) {
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return "", err
	}
	objectPath := storage.ObjectPath(groupID, ext)
	url, err := s.store.Upload(ctx, bucket, objectPath, contentType, body)
	if err != nil {
		return "", err
	}
	return url, nil
}
