package domain

import (
	"context"
	"time"
)

// Customer is the aggregate root for a back-office customer record.
// All state changes go through its methods so that every mutation leaves a
// domain event behind; writing fields directly bypasses that and is not
// supported outside this package's factory and the persistence layer.
type Customer struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	FirstName         string         `gorm:"size:100;not null" json:"first_name"`
	LastName          string         `gorm:"size:100;not null" json:"last_name"`
	Email             string         `gorm:"size:255;index;not null" json:"email"`
	PhoneNumber       string         `gorm:"size:32" json:"phone_number"`
	DateOfBirth       time.Time      `json:"date_of_birth"`
	BankAccountNumber string         `gorm:"size:64" json:"bank_account_number"`
	State             LifecycleState `gorm:"size:16;not null;default:active" json:"state"`
	CreateDate        time.Time      `json:"create_date"`
	ModifiedDate      *time.Time     `json:"modified_date"`

	events []DomainEvent
}

var _ SoftDeletable = (*Customer)(nil)

// CandidateKey is the identity key used for creation-time uniqueness:
// two active customers may not share the same first name, last name, and
// email triple.
type CandidateKey struct {
	FirstName string
	LastName  string
	Email     string
}

// UniquenessChecker reports whether a candidate customer's identity key is
// still free among active customers. It is consulted at creation time only.
type UniquenessChecker interface {
	IsUnique(ctx context.Context, candidate *Customer) (bool, error)
}

// CreateNewCustomer builds a fully initialized customer and, when a checker
// is supplied, enforces the creation-time uniqueness invariant. The returned
// aggregate carries a created event; its ID is assigned by the store on
// commit.
func CreateNewCustomer(ctx context.Context, firstName, lastName, email, phoneNumber string, dateOfBirth time.Time, bankAccountNumber string, checker UniquenessChecker) (*Customer, error) {
	c := &Customer{
		FirstName:         firstName,
		LastName:          lastName,
		Email:             email,
		PhoneNumber:       phoneNumber,
		DateOfBirth:       dateOfBirth,
		BankAccountNumber: bankAccountNumber,
		State:             StateActive,
		CreateDate:        time.Now().UTC(),
	}
	c.raise(newCustomerCreatedEvent(c))

	if checker != nil {
		unique, err := checker.IsUnique(ctx, c)
		if err != nil {
			return nil, err
		}
		if !unique {
			return nil, NewAppError(CodeDuplicate, "customer is not unique", nil)
		}
	}

	return c, nil
}

// Update replaces every mutable field unconditionally and stamps
// ModifiedDate. Uniqueness is a creation-time invariant and is not
// re-checked here.
func (c *Customer) Update(firstName, lastName, email, phoneNumber string, dateOfBirth time.Time, bankAccountNumber string) {
	c.FirstName = firstName
	c.LastName = lastName
	c.Email = email
	c.PhoneNumber = phoneNumber
	c.DateOfBirth = dateOfBirth
	c.BankAccountNumber = bankAccountNumber
	now := time.Now().UTC()
	c.ModifiedDate = &now
	c.raise(newCustomerUpdatedEvent(c))
}

// Delete marks the customer as logically removed. Deleting an already
// deleted customer is not rejected; the event is appended on every call.
func (c *Customer) Delete() {
	c.MarkDeleted()
	c.raise(newCustomerDeletedEvent(c))
}

// Restore brings a soft-deleted customer back. Like Delete, it does not
// guard against redundant calls.
func (c *Customer) Restore() {
	c.MarkRestored()
	c.raise(newCustomerRestoredEvent(c))
}

// MarkDeleted implements SoftDeletable. It flips lifecycle state only;
// aggregate callers should use Delete so an event is recorded.
func (c *Customer) MarkDeleted() { c.State = StateDeleted }

// MarkRestored implements SoftDeletable.
func (c *Customer) MarkRestored() { c.State = StateActive }

// IsDeleted implements SoftDeletable.
func (c *Customer) IsDeleted() bool { return c.State == StateDeleted }

// Key returns the creation-time identity key of this customer.
func (c *Customer) Key() CandidateKey {
	return CandidateKey{FirstName: c.FirstName, LastName: c.LastName, Email: c.Email}
}

// TakeEvents returns the events raised since construction or the last
// ClearEvents, in order. The buffer is owned by this instance and is not
// safe for concurrent use; one aggregate instance serves one request.
func (c *Customer) TakeEvents() []DomainEvent {
	out := make([]DomainEvent, len(c.events))
	copy(out, c.events)
	return out
}

// ClearEvents empties the event buffer. The orchestration layer calls this
// after reading the events, typically after a successful commit.
func (c *Customer) ClearEvents() { c.events = nil }

func (c *Customer) raise(e DomainEvent) { c.events = append(c.events, e) }

// CustomerRepository is the storage contract the handlers orchestrate
// against. Reads execute immediately; Add, Update, Delete, and Restore stage
// changes that the owning unit of work applies atomically on Commit.
type CustomerRepository interface {
	Add(ctx context.Context, customer *Customer) error
	FindByID(ctx context.Context, id uint) (*Customer, error)
	// FindByEmail fails with ErrAmbiguousMatch when more than one record
	// holds the email instead of silently picking one.
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	// ListPage returns one 1-based page ordered by creation (id), including
	// soft-deleted customers; the returned total counts the same unfiltered
	// set.
	ListPage(ctx context.Context, pageIndex, pageSize int) ([]Customer, int64, error)
	// Exists reports whether an active customer already holds the key.
	Exists(ctx context.Context, key CandidateKey) (bool, error)
	Update(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, customer *Customer) error
	Restore(ctx context.Context, customer *Customer) error
}

// UnitOfWork demarcates one atomic persistence boundary per request.
// No rollback is exposed: staged changes that are never committed are simply
// discarded with the unit of work.
type UnitOfWork interface {
	Customers() CustomerRepository
	// Commit applies all staged changes atomically and returns the number of
	// affected records. It fails with a persistence error if the store
	// rejects the write, leaving nothing applied.
	Commit(ctx context.Context) (int64, error)
}

// UnitOfWorkFactory creates one UnitOfWork per inbound request.
type UnitOfWorkFactory interface {
	New() UnitOfWork
}
