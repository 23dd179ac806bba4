package storage

import (
	"strings"
	"testing"
)

func TestValidateImageType(t *testing.T) {
	tests := []struct {
		contentType string
		expectedExt string
		expectErr   bool
	}{
		{contentType: "image/jpeg", expectedExt: ".jpg"},
		{contentType: "image/png", expectedExt: ".png"},
		{contentType: "image/webp", expectedExt: ".webp"},
		{contentType: "image/jpeg; charset=utf-8", expectedExt: ".jpg"},
		{contentType: "application/pdf", expectErr: true},
		{contentType: "", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			ext, err := ValidateImageType(tt.contentType)
			if tt.expectErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ext != tt.expectedExt {
				t.Errorf("expected ext %q, got %q", tt.expectedExt, ext)
			}
		})
	}
}

func TestValidateDocumentTypeAllowsPDF(t *testing.T) {
	ext, err := ValidateDocumentType("application/pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext != ".pdf" {
		t.Errorf("expected .pdf, got %q", ext)
	}
}

func TestObjectPath(t *testing.T) {
	path := ObjectPath("group-1", ".jpg")
	if !strings.HasPrefix(path, "group-1/") {
		t.Errorf("expected path scoped to the group, got %q", path)
	}
	if !strings.HasSuffix(path, ".jpg") {
		t.Errorf("expected path to keep the extension, got %q", path)
	}
}

func TestObjectPathFromURL(t *testing.T) {
	url := "https://example.supabase.co/storage/v1/object/public/receipts/group-1/abc.jpg"

	path, ok := ObjectPathFromURL(url, "receipts")
	if !ok {
		t.Fatal("expected the object path to be recovered")
	}
	if path != "group-1/abc.jpg" {
		t.Errorf("expected group-1/abc.jpg, got %q", path)
	}

	if _, ok := ObjectPathFromURL(url, "trip-documents"); ok {
		t.Error("expected a miss for the wrong bucket")
	}
	if _, ok := ObjectPathFromURL("https://example.com/receipts/abc.jpg", "receipts"); ok {
		t.Error("expected a miss for a URL without the public object marker")
	}
}
