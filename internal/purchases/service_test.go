package purchases

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db/models"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/enums"
	pkgerrors "github.com/rafaelschmitt/fleetfuel-backend/pkg/errors"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/pagination"
)

func TestCreateStartsPending(t *testing.T) {
	client := newTestDB(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	user := mustCreateUser(t, client)
	vehicle := mustCreateVehicle(t, client, "ABC1234", enums.VehicleStatusInStock)

	liters := 42.5
	created, err := svc.Create(ctx, user.ID, CreatePurchaseInput{
		VehicleID:   vehicle.ID,
		TotalAmount: decimal.NewFromFloat(250.75),
		Liters:      &liters,
	})
	require.NoError(t, err)

	assert.Equal(t, enums.PurchaseStatusPending.String(), created.Status)
	assert.Nil(t, created.Annotation)
	assert.False(t, created.PurchasedAt.IsZero())
	assert.True(t, decimal.NewFromFloat(250.75).Equal(created.TotalAmount))
}

func TestCreateRejectsSoldVehicleBeforeWrite(t *testing.T) {
	client := newTestDB(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	user := mustCreateUser(t, client)
	vehicle := mustCreateVehicle(t, client, "SLD0X01", enums.VehicleStatusSold)

	_, err := svc.Create(ctx, user.ID, CreatePurchaseInput{
		VehicleID:   vehicle.ID,
		TotalAmount: decimal.NewFromInt(100),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	var count int64
	require.NoError(t, client.DB().Model(&models.FuelPurchase{}).Count(&count).Error)
	assert.Zero(t, count, "no row may be written for a sold vehicle")
}

func TestCreateValidatesAmount(t *testing.T) {
	client := newTestDB(t)
	svc := newTestService(t, client)

	user := mustCreateUser(t, client)
	vehicle := mustCreateVehicle(t, client, "AMT0X01", enums.VehicleStatusInStock)

	_, err := svc.Create(context.Background(), user.ID, CreatePurchaseInput{
		VehicleID:   vehicle.ID,
		TotalAmount: decimal.Zero,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestListNewestFirstWithCursor(t *testing.T) {
	client := newTestDB(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	user := mustCreateUser(t, client)
	vehicle := mustCreateVehicle(t, client, "LST0X01", enums.VehicleStatusInStock)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		purchase := &models.FuelPurchase{
			UserID:      user.ID,
			VehicleID:   &vehicle.ID,
			PurchasedAt: base.Add(time.Duration(i) * time.Minute),
			TotalAmount: decimal.NewFromInt(int64(100 + i)),
			Status:      enums.PurchaseStatusPending,
		}
		require.NoError(t, client.DB().Create(purchase).Error)
	}

	page1, err := svc.List(ctx, ListPurchasesInput{Pagination: pagination.Params{Limit: 3}})
	require.NoError(t, err)
	require.Len(t, page1.Items, 3)
	require.NotNil(t, page1.NextCursor)
	assert.True(t, page1.Items[0].PurchasedAt.After(page1.Items[1].PurchasedAt))

	page2, err := svc.List(ctx, ListPurchasesInput{Pagination: pagination.Params{Limit: 3, Cursor: *page1.NextCursor}})
	require.NoError(t, err)
	require.Len(t, page2.Items, 2)
	assert.Nil(t, page2.NextCursor)

	seen := map[string]bool{}
	for _, item := range append(page1.Items, page2.Items...) {
		require.False(t, seen[item.ID.String()], "pages must not overlap")
		seen[item.ID.String()] = true
	}
}

func TestListRejectsMalformedCursor(t *testing.T) {
	svc := newTestService(t, newTestDB(t))

	_, err := svc.List(context.Background(), ListPurchasesInput{Pagination: pagination.Params{Cursor: "not-base64!"}})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestReviewOverwritesAnnotationAndAllowsReReview(t *testing.T) {
	client := newTestDB(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	user := mustCreateUser(t, client)
	vehicle := mustCreateVehicle(t, client, "REV0X01", enums.VehicleStatusInStock)

	annotation := "Plate mismatch: read 'XXX' expected 'REV0X01'"
	purchase := &models.FuelPurchase{
		UserID:      user.ID,
		VehicleID:   &vehicle.ID,
		TotalAmount: decimal.NewFromInt(200),
		Status:      enums.PurchaseStatusPending,
		Annotation:  &annotation,
	}
	require.NoError(t, client.DB().Create(purchase).Error)

	justification := "checked with driver, plate photo was of the trailer"
	reviewed, err := svc.Review(ctx, purchase.ID, ReviewInput{
		Status:        enums.PurchaseStatusApproved,
		Justification: &justification,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PurchaseStatusApproved.String(), reviewed.Status)
	require.NotNil(t, reviewed.Annotation)
	assert.Equal(t, justification, *reviewed.Annotation)

	// a later verdict can flip the outcome
	reviewed, err = svc.Review(ctx, purchase.ID, ReviewInput{Status: enums.PurchaseStatusRejected})
	require.NoError(t, err)
	assert.Equal(t, enums.PurchaseStatusRejected.String(), reviewed.Status)
	require.NotNil(t, reviewed.Annotation)
	assert.Equal(t, justification, *reviewed.Annotation, "annotation untouched when no justification given")
}

func TestReviewValidatesStatus(t *testing.T) {
	svc := newTestService(t, newTestDB(t))

	_, err := svc.Review(context.Background(), uuid.Nil, ReviewInput{Status: enums.PurchaseStatusPending})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
