package services

import (
	"fmt"

	"github.com/seriouslegend2/hungerhearts-sub000/internal/models"

	"github.com/pkg/errors"
)

// Common service errors. Handlers map these to HTTP statuses.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAlreadyExists       = errors.New("already exists")
	ErrDonorBanned         = errors.New("donor is banned")
	ErrDeliveryBoyInactive = errors.New("delivery boy is inactive")
	ErrRequestNotReady     = errors.New("request is not accepted or already has a delivery assigned")
)

// DeliveryBoyBusyError names the busy delivery boy in a rejected assignment.
type DeliveryBoyBusyError struct {
	Name string
}

func (e *DeliveryBoyBusyError) Error() string {
	return fmt.Sprintf("delivery boy %s is already on an ongoing delivery", e.Name)
}

// StateConflictError reports an order transition attempted from the wrong state.
type StateConflictError struct {
	Op      string
	Current models.OrderStatus
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("cannot %s an order in state %q", e.Op, e.Current)
}
