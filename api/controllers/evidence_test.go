package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rafaelschmitt/fleetfuel-backend/internal/evidence"
	"github.com/rafaelschmitt/fleetfuel-backend/internal/purchases"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/enums"
	pkgerrors "github.com/rafaelschmitt/fleetfuel-backend/pkg/errors"
)

type stubEvidenceService struct {
	result   *evidence.UploadResult
	odometer int
	err      error

	lastUpload *evidence.UploadInput
}

func (s *stubEvidenceService) Upload(ctx context.Context, input evidence.UploadInput) (*evidence.UploadResult, error) {
	s.lastUpload = &input
	return s.result, s.err
}

func (s *stubEvidenceService) ReadOdometer(ctx context.Context, image []byte) (int, error) {
	return s.odometer, s.err
}

func multipartEvidence(t *testing.T, kind string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("photo", "evidence.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if kind != "" {
		if err := writer.WriteField("kind", kind); err != nil {
			t.Fatalf("write kind field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func newEvidenceRouter(upload http.HandlerFunc) http.Handler {
	router := chi.NewRouter()
	router.Post("/purchases/{purchaseID}/photos", upload)
	return router
}

func TestEvidenceUploadForwardsKindAndBytes(t *testing.T) {
	annotation := "Alert: divergent plate"
	svc := &stubEvidenceService{result: &evidence.UploadResult{
		Photo:      purchases.EvidencePhotoDTO{ID: uuid.New(), Kind: "PLATE", URL: "https://blob.example.com/x"},
		Analysis:   annotation,
		Annotation: &annotation,
	}}
	router := newEvidenceRouter(EvidenceUpload(svc, 1<<20, nil))

	purchaseID := uuid.New()
	body, contentType := multipartEvidence(t, "plate", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/purchases/"+purchaseID.String()+"/photos", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastUpload == nil {
		t.Fatal("expected upload call")
	}
	if svc.lastUpload.PurchaseID != purchaseID {
		t.Fatalf("expected purchase %s got %s", purchaseID, svc.lastUpload.PurchaseID)
	}
	if svc.lastUpload.Kind != enums.EvidenceKindPlate {
		t.Fatalf("expected PLATE kind got %s", svc.lastUpload.Kind)
	}
	if string(svc.lastUpload.Data) != "jpeg-bytes" {
		t.Fatalf("expected image bytes forwarded, got %q", svc.lastUpload.Data)
	}

	var envelope struct {
		Data struct {
			Analysis   string  `json:"analysis"`
			Annotation *string `json:"annotation"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Analysis != annotation {
		t.Fatalf("unexpected analysis %q", envelope.Data.Analysis)
	}
}

func TestEvidenceUploadRejectsUnknownKind(t *testing.T) {
	router := newEvidenceRouter(EvidenceUpload(&stubEvidenceService{}, 1<<20, nil))

	body, contentType := multipartEvidence(t, "RECEIPT", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/purchases/"+uuid.NewString()+"/photos", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestEvidenceUploadBlobOutage(t *testing.T) {
	svc := &stubEvidenceService{err: pkgerrors.New(pkgerrors.CodeDependency, "blob store upload failed")}
	router := newEvidenceRouter(EvidenceUpload(svc, 1<<20, nil))

	body, contentType := multipartEvidence(t, "PANEL", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/purchases/"+uuid.NewString()+"/photos", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestOdometerAssistReturnsReading(t *testing.T) {
	handler := OdometerAssist(&stubEvidenceService{odometer: 15400}, 1<<20, nil)

	body, contentType := multipartEvidence(t, "", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/odometer/read", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data struct {
			Odometer int `json:"odometer"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Odometer != 15400 {
		t.Fatalf("unexpected odometer %d", envelope.Data.Odometer)
	}
}
