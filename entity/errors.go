package entity

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrNoPaymentOrder       = errors.New("no payment order associated with booking")
	ErrSlotCapacityExceeded = errors.New("slot capacity exceeded")
	ErrNoCurrentPerson      = errors.New("no current person")
	ErrInvalidBooking       = errors.New("invalid booking")
)

// NotFoundError reports a missing record. It matches ErrNotFound with errors.Is.
type NotFoundError struct {
	Table string
	ID    string
}

func NewNotFoundError[T Record](id ID[T]) NotFoundError {
	return NotFoundError{Table: id.Table(), ID: id.String()}
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("no record with id '%s' in %s", e.ID, e.Table)
}

func (e NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// PaymentProviderError keeps the response body of a failed payment provider call.
type PaymentProviderError struct {
	StatusCode int
	Body       string
}

func (e PaymentProviderError) Error() string {
	return fmt.Sprintf("payment provider call failed with status %d: '%s'", e.StatusCode, e.Body)
}

// SlotCapacityError names the slot a booking could not be placed in.
type SlotCapacityError struct {
	Slot      string
	Requested int64
	Available int64
}

func (e SlotCapacityError) Error() string {
	return fmt.Sprintf("slot %s has %d places left, %d requested", e.Slot, e.Available, e.Requested)
}

func (e SlotCapacityError) Unwrap() error {
	return ErrSlotCapacityExceeded
}
