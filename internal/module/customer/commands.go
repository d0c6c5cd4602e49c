package customer

import (
	"context"
	"log/slog"
	"time"

	"github.com/simp-lee/customerbase/internal/domain"
)

// CommandResult reports the outcome of a state-changing request. It is only
// ever produced by a handler that ran to completion, so IsDone is true on
// every instance a caller can observe.
type CommandResult struct {
	IsDone bool `json:"is_done"`
}

// CreateCustomer creates a new customer record. The binding tags guard the
// HTTP entry point; the validate tags guard every dispatch, HTTP or not.
type CreateCustomer struct {
	FirstName         string    `json:"first_name" binding:"required,max=100" validate:"required,max=100"`
	LastName          string    `json:"last_name" binding:"required,max=100" validate:"required,max=100"`
	Email             string    `json:"email" binding:"required,email" validate:"required,email"`
	PhoneNumber       string    `json:"phone_number" binding:"required,max=32" validate:"required,max=32"`
	DateOfBirth       time.Time `json:"date_of_birth" binding:"required" validate:"required"`
	BankAccountNumber string    `json:"bank_account_number" binding:"required,max=64" validate:"required,max=64"`
}

// RequestName implements dispatch.Request.
func (CreateCustomer) RequestName() string { return "CreateCustomer" }

// UpdateCustomer replaces every mutable field of an existing customer.
// CustomerID comes from the URL path, never the body, so it carries no
// binding tag.
type UpdateCustomer struct {
	CustomerID        uint      `json:"customer_id" validate:"required"`
	FirstName         string    `json:"first_name" binding:"required,max=100" validate:"required,max=100"`
	LastName          string    `json:"last_name" binding:"required,max=100" validate:"required,max=100"`
	Email             string    `json:"email" binding:"required,email" validate:"required,email"`
	PhoneNumber       string    `json:"phone_number" binding:"required,max=32" validate:"required,max=32"`
	DateOfBirth       time.Time `json:"date_of_birth" binding:"required" validate:"required"`
	BankAccountNumber string    `json:"bank_account_number" binding:"required,max=64" validate:"required,max=64"`
}

// RequestName implements dispatch.Request.
func (UpdateCustomer) RequestName() string { return "UpdateCustomer" }

// DeleteCustomer soft-deletes a customer.
type DeleteCustomer struct {
	CustomerID uint `json:"customer_id" validate:"required"`
}

// RequestName implements dispatch.Request.
func (DeleteCustomer) RequestName() string { return "DeleteCustomer" }

// RestoreCustomer brings a soft-deleted customer back.
type RestoreCustomer struct {
	CustomerID uint `json:"customer_id" validate:"required"`
}

// RequestName implements dispatch.Request.
func (RestoreCustomer) RequestName() string { return "RestoreCustomer" }

// CreateCustomerHandler orchestrates customer creation: factory (with the
// uniqueness check), staged insert, one commit.
type CreateCustomerHandler struct {
	factory domain.UnitOfWorkFactory
	checker domain.UniquenessChecker
	logger  *slog.Logger
}

// NewCreateCustomerHandler creates a CreateCustomerHandler.
func NewCreateCustomerHandler(factory domain.UnitOfWorkFactory, checker domain.UniquenessChecker, logger *slog.Logger) *CreateCustomerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreateCustomerHandler{factory: factory, checker: checker, logger: logger}
}

// Handle implements dispatch.Handler.
func (h *CreateCustomerHandler) Handle(ctx context.Context, cmd CreateCustomer) (CommandResult, error) {
	newCustomer, err := domain.CreateNewCustomer(ctx,
		cmd.FirstName, cmd.LastName, cmd.Email, cmd.PhoneNumber, cmd.DateOfBirth, cmd.BankAccountNumber,
		h.checker)
	if err != nil {
		return CommandResult{}, err
	}

	uow := h.factory.New()
	if err := uow.Customers().Add(ctx, newCustomer); err != nil {
		return CommandResult{}, err
	}
	if _, err := uow.Commit(ctx); err != nil {
		return CommandResult{}, err
	}

	drainEvents(ctx, h.logger, newCustomer)
	return CommandResult{IsDone: true}, nil
}

// UpdateCustomerHandler loads the aggregate, applies the full-field update,
// and commits.
type UpdateCustomerHandler struct {
	factory domain.UnitOfWorkFactory
	logger  *slog.Logger
}

// NewUpdateCustomerHandler creates an UpdateCustomerHandler.
func NewUpdateCustomerHandler(factory domain.UnitOfWorkFactory, logger *slog.Logger) *UpdateCustomerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpdateCustomerHandler{factory: factory, logger: logger}
}

// Handle implements dispatch.Handler.
func (h *UpdateCustomerHandler) Handle(ctx context.Context, cmd UpdateCustomer) (CommandResult, error) {
	uow := h.factory.New()
	repo := uow.Customers()

	c, err := repo.FindByID(ctx, cmd.CustomerID)
	if err != nil {
		return CommandResult{}, err
	}

	c.Update(cmd.FirstName, cmd.LastName, cmd.Email, cmd.PhoneNumber, cmd.DateOfBirth, cmd.BankAccountNumber)
	if err := repo.Update(ctx, c); err != nil {
		return CommandResult{}, err
	}
	if _, err := uow.Commit(ctx); err != nil {
		return CommandResult{}, err
	}

	drainEvents(ctx, h.logger, c)
	return CommandResult{IsDone: true}, nil
}

// DeleteCustomerHandler soft-deletes a loaded aggregate and commits.
type DeleteCustomerHandler struct {
	factory domain.UnitOfWorkFactory
	logger  *slog.Logger
}

// NewDeleteCustomerHandler creates a DeleteCustomerHandler.
func NewDeleteCustomerHandler(factory domain.UnitOfWorkFactory, logger *slog.Logger) *DeleteCustomerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeleteCustomerHandler{factory: factory, logger: logger}
}

// Handle implements dispatch.Handler.
func (h *DeleteCustomerHandler) Handle(ctx context.Context, cmd DeleteCustomer) (CommandResult, error) {
	uow := h.factory.New()
	repo := uow.Customers()

	c, err := repo.FindByID(ctx, cmd.CustomerID)
	if err != nil {
		return CommandResult{}, err
	}

	c.Delete()
	if err := repo.Delete(ctx, c); err != nil {
		return CommandResult{}, err
	}
	if _, err := uow.Commit(ctx); err != nil {
		return CommandResult{}, err
	}

	drainEvents(ctx, h.logger, c)
	return CommandResult{IsDone: true}, nil
}

// RestoreCustomerHandler restores a loaded aggregate and commits.
type RestoreCustomerHandler struct {
	factory domain.UnitOfWorkFactory
	logger  *slog.Logger
}

// NewRestoreCustomerHandler creates a RestoreCustomerHandler.
func NewRestoreCustomerHandler(factory domain.UnitOfWorkFactory, logger *slog.Logger) *RestoreCustomerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RestoreCustomerHandler{factory: factory, logger: logger}
}

// Handle implements dispatch.Handler.
func (h *RestoreCustomerHandler) Handle(ctx context.Context, cmd RestoreCustomer) (CommandResult, error) {
	uow := h.factory.New()
	repo := uow.Customers()

	c, err := repo.FindByID(ctx, cmd.CustomerID)
	if err != nil {
		return CommandResult{}, err
	}

	c.Restore()
	if err := repo.Restore(ctx, c); err != nil {
		return CommandResult{}, err
	}
	if _, err := uow.Commit(ctx); err != nil {
		return CommandResult{}, err
	}

	drainEvents(ctx, h.logger, c)
	return CommandResult{IsDone: true}, nil
}

// drainEvents reads, logs, and clears the events raised during one request.
// Events are captured for observability only; nothing dispatches them.
func drainEvents(ctx context.Context, logger *slog.Logger, c *domain.Customer) {
	for _, e := range c.TakeEvents() {
		logger.DebugContext(ctx, "domain event",
			slog.String("kind", string(e.Kind())),
			slog.Time("occurred_at", e.OccurredAt()),
			slog.Uint64("customer_id", uint64(c.ID)),
		)
	}
	c.ClearEvents()
}
