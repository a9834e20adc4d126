package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rafaelschmitt/fleetfuel-backend/api/middleware"
	"github.com/rafaelschmitt/fleetfuel-backend/internal/purchases"
)

type stubPurchaseService struct {
	purchase *purchases.PurchaseDTO
	page     *purchases.PurchaseListResult
	err      error

	lastUserID uuid.UUID
	lastCreate *purchases.CreatePurchaseInput
	lastList   *purchases.ListPurchasesInput
	lastReview *purchases.ReviewInput
}

func (s *stubPurchaseService) Create(ctx context.Context, userID uuid.UUID, input purchases.CreatePurchaseInput) (*purchases.PurchaseDTO, error) {
	s.lastUserID = userID
	s.lastCreate = &input
	return s.purchase, s.err
}

func (s *stubPurchaseService) Get(ctx context.Context, id uuid.UUID) (*purchases.PurchaseDTO, error) {
	return s.purchase, s.err
}

func (s *stubPurchaseService) List(ctx context.Context, input purchases.ListPurchasesInput) (*purchases.PurchaseListResult, error) {
	s.lastList = &input
	return s.page, s.err
}

func (s *stubPurchaseService) Review(ctx context.Context, id uuid.UUID, input purchases.ReviewInput) (*purchases.PurchaseDTO, error) {
	s.lastReview = &input
	return s.purchase, s.err
}

func newPurchaseRouter(review http.HandlerFunc) http.Handler {
	router := chi.NewRouter()
	router.Patch("/purchases/{purchaseID}/review", review)
	return router
}

func authedRequest(method, target string, body *bytes.Reader, userID uuid.UUID) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := middleware.WithUserID(req.Context(), userID.String())
	return req.WithContext(ctx)
}

func TestPurchaseCreateUsesAuthenticatedUser(t *testing.T) {
	userID := uuid.New()
	vehicleID := uuid.New()
	svc := &stubPurchaseService{purchase: &purchases.PurchaseDTO{
		ID:          uuid.New(),
		UserID:      userID,
		VehicleID:   &vehicleID,
		TotalAmount: decimal.NewFromFloat(250.40),
		Status:      "PENDING",
	}}
	handler := PurchaseCreate(svc, nil)

	payload := `{"vehicle_id":"` + vehicleID.String() + `","total_amount":"250.40","odometer":15400}`
	req := authedRequest(http.MethodPost, "/api/v1/purchases", bytes.NewReader([]byte(payload)), userID)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastUserID != userID {
		t.Fatalf("expected user %s got %s", userID, svc.lastUserID)
	}
	if svc.lastCreate == nil || !svc.lastCreate.TotalAmount.Equal(decimal.NewFromFloat(250.40)) {
		t.Fatalf("unexpected create input %+v", svc.lastCreate)
	}
	if svc.lastCreate.Odometer == nil || *svc.lastCreate.Odometer != 15400 {
		t.Fatalf("expected odometer forwarded, got %+v", svc.lastCreate.Odometer)
	}
}

func TestPurchaseCreateWithoutIdentity(t *testing.T) {
	handler := PurchaseCreate(&stubPurchaseService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/purchases", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestPurchaseListForwardsFilters(t *testing.T) {
	vehicleID := uuid.New()
	svc := &stubPurchaseService{page: &purchases.PurchaseListResult{Items: []purchases.PurchaseDTO{}}}
	handler := PurchaseList(svc, nil)

	target := "/api/v1/purchases?limit=10&cursor=abc&vehicle_id=" + vehicleID.String()
	req := authedRequest(http.MethodGet, target, nil, uuid.New())
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastList == nil {
		t.Fatal("expected list call")
	}
	if svc.lastList.Pagination.Limit != 10 || svc.lastList.Pagination.Cursor != "abc" {
		t.Fatalf("unexpected pagination %+v", svc.lastList.Pagination)
	}
	if svc.lastList.VehicleID == nil || *svc.lastList.VehicleID != vehicleID {
		t.Fatalf("expected vehicle filter, got %+v", svc.lastList.VehicleID)
	}
	if svc.lastList.UserID != nil {
		t.Fatalf("expected no user filter, got %+v", svc.lastList.UserID)
	}
}

func TestPurchaseListRejectsBadLimit(t *testing.T) {
	handler := PurchaseList(&stubPurchaseService{}, nil)

	req := authedRequest(http.MethodGet, "/api/v1/purchases?limit=9999", nil, uuid.New())
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPurchaseReviewParsesVerdict(t *testing.T) {
	svc := &stubPurchaseService{purchase: &purchases.PurchaseDTO{Status: "REJECTED"}}
	handler := PurchaseReview(svc, nil)

	router := newPurchaseRouter(handler)
	id := uuid.New()

	payload := `{"status":"REJECTED","justification":"  receipt does not match pump total  "}`
	req := httptest.NewRequest(http.MethodPatch, "/purchases/"+id.String()+"/review", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastReview == nil || svc.lastReview.Status.String() != "REJECTED" {
		t.Fatalf("unexpected review input %+v", svc.lastReview)
	}
	if svc.lastReview.Justification == nil || *svc.lastReview.Justification != "receipt does not match pump total" {
		t.Fatalf("expected trimmed justification, got %+v", svc.lastReview.Justification)
	}
}

func TestPurchaseReviewRejectsPendingVerdict(t *testing.T) {
	handler := PurchaseReview(&stubPurchaseService{}, nil)

	router := newPurchaseRouter(handler)
	id := uuid.New()

	req := httptest.NewRequest(http.MethodPatch, "/purchases/"+id.String()+"/review", bytes.NewReader([]byte(`{"status":"PENDING"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
