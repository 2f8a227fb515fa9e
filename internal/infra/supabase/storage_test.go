package supabase

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestUpload_StoresObjectAndReturnsBucketPath(t *testing.T) {
	var gotPath, gotContentType, gotBody string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		b, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read upload body: %v", err)
		}
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Key":"receipts/nota.pdf"}`))
	})
	storage := NewStorage(client, "receipts")

	stored, err := storage.Upload(context.Background(), "nota.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if stored != "receipts/nota.pdf" {
		t.Errorf("stored path = %q, want receipts/nota.pdf", stored)
	}
	if gotPath != "/storage/v1/object/receipts/nota.pdf" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotContentType != "application/pdf" {
		t.Errorf("content type = %q, want application/pdf", gotContentType)
	}
	if gotBody != "%PDF-1.4" {
		t.Errorf("body = %q, want the blob", gotBody)
	}
}

func TestUpload_SurfacesBackendRejection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"bucket not found"}`, http.StatusNotFound)
	})
	storage := NewStorage(client, "missing-bucket")

	_, err := storage.Upload(context.Background(), "x.png", "image/png", strings.NewReader("png"))
	if err == nil {
		t.Fatal("expected the rejection to surface")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error = %v, want the backend status in it", err)
	}
}
