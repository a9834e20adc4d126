package vehicles

import (
	"context"
	"time"

	"github.com/looplab/fsm"

	"github.com/rafaelschmitt/fleetfuel-backend/pkg/db/models"
	"github.com/rafaelschmitt/fleetfuel-backend/pkg/enums"
	pkgerrors "github.com/rafaelschmitt/fleetfuel-backend/pkg/errors"
)

// RetentionWindow is how long a SOLD vehicle survives before the listing
// sweep hard-deletes it.
const RetentionWindow = 48 * time.Hour

const (
	eventSell    = "sell"
	eventRestock = "restock"
)

func newLifecycle(current enums.VehicleStatus) *fsm.FSM {
	return fsm.NewFSM(
		current.String(),
		fsm.Events{
			{Name: eventSell, Src: []string{enums.VehicleStatusInStock.String()}, Dst: enums.VehicleStatusSold.String()},
			{Name: eventRestock, Src: []string{enums.VehicleStatusSold.String()}, Dst: enums.VehicleStatusInStock.String()},
		},
		fsm.Callbacks{},
	)
}

// applyStatus drives the vehicle through its lifecycle machine toward target.
// Selling stamps SoldAt with the current time; restocking clears it, which
// also cancels the pending retention deletion.
func applyStatus(ctx context.Context, vehicle *models.Vehicle, target enums.VehicleStatus, now time.Time) error {
	if vehicle.Status == target {
		return nil
	}

	machine := newLifecycle(vehicle.Status)

	var event string
	switch target {
	case enums.VehicleStatusSold:
		event = eventSell
	case enums.VehicleStatusInStock:
		event = eventRestock
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown vehicle status")
	}

	if err := machine.Event(ctx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "vehicle status transition rejected")
	}

	vehicle.Status = target
	if target == enums.VehicleStatusSold {
		soldAt := now.UTC()
		vehicle.SoldAt = &soldAt
	} else {
		vehicle.SoldAt = nil
	}
	return nil
}
