package customer

import (
	"context"
	"time"

	"github.com/simp-lee/customerbase/internal/domain"
	"github.com/simp-lee/customerbase/internal/pkg"
)

// CustomerDTO is the read-side projection of a customer. It mirrors the
// aggregate's public fields minus internal bookkeeping (creation timestamp
// and the event buffer).
type CustomerDTO struct {
	ID                uint       `json:"id"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Email             string     `json:"email"`
	PhoneNumber       string     `json:"phone_number"`
	DateOfBirth       time.Time  `json:"date_of_birth"`
	BankAccountNumber string     `json:"bank_account_number"`
	IsDeleted         bool       `json:"is_deleted"`
	ModifiedDate      *time.Time `json:"modified_date"`
}

func toDTO(c *domain.Customer) CustomerDTO {
	return CustomerDTO{
		ID:                c.ID,
		FirstName:         c.FirstName,
		LastName:          c.LastName,
		Email:             c.Email,
		PhoneNumber:       c.PhoneNumber,
		DateOfBirth:       c.DateOfBirth,
		BankAccountNumber: c.BankAccountNumber,
		IsDeleted:         c.IsDeleted(),
		ModifiedDate:      c.ModifiedDate,
	}
}

// GetCustomerByID looks a customer up by its primary key.
type GetCustomerByID struct {
	CustomerID uint `json:"customer_id" validate:"required"`
}

// RequestName implements dispatch.Request.
func (GetCustomerByID) RequestName() string { return "GetCustomerByID" }

// GetCustomerByEmail looks a customer up by email.
type GetCustomerByEmail struct {
	Email string `json:"email" validate:"required,email"`
}

// RequestName implements dispatch.Request.
func (GetCustomerByEmail) RequestName() string { return "GetCustomerByEmail" }

// GetCustomersList returns one page of customers.
type GetCustomersList struct {
	PageIndex int `json:"page_index" validate:"min=1"`
	PageSize  int `json:"page_size" validate:"min=1"`
}

// RequestName implements dispatch.Request.
func (GetCustomersList) RequestName() string { return "GetCustomersList" }

// GetCustomerByIDHandler resolves a single customer by id.
type GetCustomerByIDHandler struct {
	repo domain.CustomerRepository
}

// NewGetCustomerByIDHandler creates a GetCustomerByIDHandler.
func NewGetCustomerByIDHandler(repo domain.CustomerRepository) *GetCustomerByIDHandler {
	return &GetCustomerByIDHandler{repo: repo}
}

// Handle implements dispatch.Handler.
func (h *GetCustomerByIDHandler) Handle(ctx context.Context, q GetCustomerByID) (CustomerDTO, error) {
	c, err := h.repo.FindByID(ctx, q.CustomerID)
	if err != nil {
		return CustomerDTO{}, err
	}
	return toDTO(c), nil
}

// GetCustomerByEmailHandler resolves a single customer by email; an
// ambiguous match surfaces as an error from the repository.
type GetCustomerByEmailHandler struct {
	repo domain.CustomerRepository
}

// NewGetCustomerByEmailHandler creates a GetCustomerByEmailHandler.
func NewGetCustomerByEmailHandler(repo domain.CustomerRepository) *GetCustomerByEmailHandler {
	return &GetCustomerByEmailHandler{repo: repo}
}

// Handle implements dispatch.Handler.
func (h *GetCustomerByEmailHandler) Handle(ctx context.Context, q GetCustomerByEmail) (CustomerDTO, error) {
	c, err := h.repo.FindByEmail(ctx, q.Email)
	if err != nil {
		return CustomerDTO{}, err
	}
	return toDTO(c), nil
}

// GetCustomersListHandler returns one page of customer projections.
type GetCustomersListHandler struct {
	repo domain.CustomerRepository
}

// NewGetCustomersListHandler creates a GetCustomersListHandler.
func NewGetCustomersListHandler(repo domain.CustomerRepository) *GetCustomersListHandler {
	return &GetCustomersListHandler{repo: repo}
}

// Handle implements dispatch.Handler.
func (h *GetCustomersListHandler) Handle(ctx context.Context, q GetCustomersList) (*pkg.PaginatedResult[CustomerDTO], error) {
	customers, total, err := h.repo.ListPage(ctx, q.PageIndex, q.PageSize)
	if err != nil {
		return nil, err
	}

	dtos := make([]CustomerDTO, 0, len(customers))
	for i := range customers {
		dtos = append(dtos, toDTO(&customers[i]))
	}
	return pkg.NewPaginatedResult(dtos, total, q.PageIndex, q.PageSize), nil
}
