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

	"github.com/rafaelschmitt/fleetfuel-backend/internal/vehicles"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/enums"
	pkgerrors "github.com/rafaelschmitt/fleetfuel-backend/pkg/errors"
)

type stubVehicleService struct {
	vehicle *vehicles.VehicleDTO
	listed  []vehicles.VehicleDTO
	err     error

	lastCreate   *vehicles.CreateVehicleInput
	lastIdentify []byte
}

func (s *stubVehicleService) Create(ctx context.Context, input vehicles.CreateVehicleInput) (*vehicles.VehicleDTO, error) {
	s.lastCreate = &input
	return s.vehicle, s.err
}

func (s *stubVehicleService) Update(ctx context.Context, id uuid.UUID, input vehicles.UpdateVehicleInput) (*vehicles.VehicleDTO, error) {
	return s.vehicle, s.err
}

func (s *stubVehicleService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.err
}

func (s *stubVehicleService) Get(ctx context.Context, id uuid.UUID) (*vehicles.VehicleDTO, error) {
	return s.vehicle, s.err
}

func (s *stubVehicleService) List(ctx context.Context) ([]vehicles.VehicleDTO, error) {
	return s.listed, s.err
}

func (s *stubVehicleService) IdentifyByPhoto(ctx context.Context, image []byte) (*vehicles.VehicleDTO, error) {
	s.lastIdentify = image
	return s.vehicle, s.err
}

func multipartPhoto(t *testing.T, field string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, "photo.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestVehicleCreatePassesPayload(t *testing.T) {
	svc := &stubVehicleService{vehicle: &vehicles.VehicleDTO{
		ID:     uuid.New(),
		Plate:  "ABC1234",
		Status: enums.VehicleStatusInStock.String(),
	}}
	handler := VehicleCreate(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/vehicles", bytes.NewReader([]byte(`{"plate":"abc-1234","model":"Fiorino"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastCreate == nil || svc.lastCreate.Plate != "abc-1234" {
		t.Fatalf("expected raw plate forwarded, got %+v", svc.lastCreate)
	}
}

func TestVehicleGetRejectsBadID(t *testing.T) {
	handler := VehicleGet(&stubVehicleService{}, nil)

	router := chi.NewRouter()
	router.Get("/vehicles/{vehicleID}", handler)

	req := httptest.NewRequest(http.MethodGet, "/vehicles/not-a-uuid", nil)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestVehicleIdentifyForwardsImage(t *testing.T) {
	svc := &stubVehicleService{vehicle: &vehicles.VehicleDTO{Plate: "XYZ9W87"}}
	handler := VehicleIdentify(svc, 1<<20, nil)

	body, contentType := multipartPhoto(t, "photo", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/vehicles/identify", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if string(svc.lastIdentify) != "jpeg-bytes" {
		t.Fatalf("expected image bytes forwarded, got %q", svc.lastIdentify)
	}

	var envelope struct {
		Data struct {
			Plate string `json:"plate"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Plate != "XYZ9W87" {
		t.Fatalf("unexpected plate %q", envelope.Data.Plate)
	}
}

func TestVehicleIdentifyMissingFile(t *testing.T) {
	handler := VehicleIdentify(&stubVehicleService{}, 1<<20, nil)

	body, contentType := multipartPhoto(t, "wrong_field", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/vehicles/identify", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestVehicleIdentifySoldConflict(t *testing.T) {
	svc := &stubVehicleService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "vehicle is registered as sold")}
	handler := VehicleIdentify(svc, 1<<20, nil)

	body, contentType := multipartPhoto(t, "photo", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/vehicles/identify", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}
