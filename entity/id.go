package entity

import "github.com/google/uuid"

// Record is implemented by every persisted aggregate. Table names the
// relation the aggregate is stored in.
type Record interface {
	Table() string
}

// ID is a string identifier tied at compile time to the record type it
// points at, so a PersonID cannot be used where an EventID is expected.
type ID[T Record] string

func NewID[T Record]() ID[T] {
	return ID[T](uuid.NewString())
}

func (id ID[T]) String() string {
	return string(id)
}

func (id ID[T]) Table() string {
	var record T
	return record.Table()
}

func (id ID[T]) IsZero() bool {
	return id == ""
}

type (
	EventID   = ID[Event]
	BookingID = ID[Booking]
	PersonID  = ID[Person]
)
