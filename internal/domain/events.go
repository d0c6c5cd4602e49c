package domain

import "time"

// EventKind identifies what a domain event describes.
type EventKind string

const (
	EventCustomerCreated  EventKind = "CustomerCreated"
	EventCustomerUpdated  EventKind = "CustomerUpdated"
	EventCustomerDeleted  EventKind = "CustomerDeleted"
	EventCustomerRestored EventKind = "CustomerRestored"
)

// DomainEvent is an immutable record of a state change raised by an
// aggregate. Events are captured for the orchestration layer to read and
// clear; nothing in this module persists or dispatches them.
type DomainEvent interface {
	Kind() EventKind
	OccurredAt() time.Time
}

type baseEvent struct {
	at time.Time
}

func (e baseEvent) OccurredAt() time.Time { return e.at }

// CustomerCreatedEvent records the construction of a new customer.
type CustomerCreatedEvent struct {
	baseEvent
	Customer *Customer
}

func (CustomerCreatedEvent) Kind() EventKind { return EventCustomerCreated }

// CustomerUpdatedEvent records a full-field replacement.
type CustomerUpdatedEvent struct {
	baseEvent
	Customer *Customer
}

func (CustomerUpdatedEvent) Kind() EventKind { return EventCustomerUpdated }

// CustomerDeletedEvent records a soft delete.
type CustomerDeletedEvent struct {
	baseEvent
	Customer *Customer
}

func (CustomerDeletedEvent) Kind() EventKind { return EventCustomerDeleted }

// CustomerRestoredEvent records a restore from soft delete.
type CustomerRestoredEvent struct {
	baseEvent
	Customer *Customer
}

func (CustomerRestoredEvent) Kind() EventKind { return EventCustomerRestored }

func newCustomerCreatedEvent(c *Customer) CustomerCreatedEvent {
	return CustomerCreatedEvent{baseEvent: baseEvent{at: time.Now().UTC()}, Customer: c}
}

func newCustomerUpdatedEvent(c *Customer) CustomerUpdatedEvent {
	return CustomerUpdatedEvent{baseEvent: baseEvent{at: time.Now().UTC()}, Customer: c}
}

func newCustomerDeletedEvent(c *Customer) CustomerDeletedEvent {
	return CustomerDeletedEvent{baseEvent: baseEvent{at: time.Now().UTC()}, Customer: c}
}

func newCustomerRestoredEvent(c *Customer) CustomerRestoredEvent {
	return CustomerRestoredEvent{baseEvent: baseEvent{at: time.Now().UTC()}, Customer: c}
}
