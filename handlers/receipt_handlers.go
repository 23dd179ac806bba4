package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "tripmate-backend/errors"
	"tripmate-backend/storage"
)

// openUploadedFile pulls the "file" part out of a multipart form and enforces
// the upload size ceiling.
func openUploadedFile(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(storage.MaxUploadBytes); err != nil {
		return nil, nil, apperrors.InvalidRequest("Expected a multipart form with a file field.")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, apperrors.MissingRequiredField("file")
	}
	if header.Size > storage.MaxUploadBytes {
		file.Close()
		return nil, nil, apperrors.InvalidRequest(
			fmt.Sprintf("File exceeds the %d MB upload limit.", storage.MaxUploadBytes>>20))
	}
	return file, header, nil
}

func (h *Handlers) ScanReceipt(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	file, header, err := openUploadedFile(r)
	if err != nil {
		handleError(w, err)
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(io.LimitReader(file, storage.MaxUploadBytes))
	if err != nil {
		handleError(w, apperrors.InvalidRequest("Failed to read uploaded file."))
		return
	}

	result, err := h.receiptService.ScanReceipt(r.Context(), userID,
		chi.URLParam(r, "groupID"), imageData, header.Header.Get("Content-Type"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handlers) UploadReceipt(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	file, header, err := openUploadedFile(r)
	if err != nil {
		handleError(w, err)
		return
	}
	defer file.Close()

	url, err := h.receiptService.UploadReceipt(r.Context(), userID,
		chi.URLParam(r, "groupID"), file, header.Header.Get("Content-Type"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"url": url})
}

func (h *Handlers) UploadDocument(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	file, header, err := openUploadedFile(r)
	if err != nil {
		handleError(w, err)
		return
	}
	defer file.Close()

	url, err := h.receiptService.UploadDocument(r.Context(), userID,
		chi.URLParam(r, "groupID"), file, header.Header.Get("Content-Type"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"url": url})
}
