package customer

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/customerbase/internal/dispatch"
	"github.com/simp-lee/customerbase/internal/domain"
	"github.com/simp-lee/customerbase/internal/pkg"
)

const (
	defaultPageIndex = 1
	defaultPageSize  = 20
)

// Handlers bundles the command and query handlers of the customer module.
type Handlers struct {
	Create  *CreateCustomerHandler
	Update  *UpdateCustomerHandler
	Delete  *DeleteCustomerHandler
	Restore *RestoreCustomerHandler
	ByID    *GetCustomerByIDHandler
	ByEmail *GetCustomerByEmailHandler
	List    *GetCustomersListHandler
}

// NewHandlers wires every customer handler over the shared read repository
// and the per-request unit-of-work factory.
func NewHandlers(factory domain.UnitOfWorkFactory, repo domain.CustomerRepository, checker domain.UniquenessChecker, logger *slog.Logger) *Handlers {
	return &Handlers{
		Create:  NewCreateCustomerHandler(factory, checker, logger),
		Update:  NewUpdateCustomerHandler(factory, logger),
		Delete:  NewDeleteCustomerHandler(factory, logger),
		Restore: NewRestoreCustomerHandler(factory, logger),
		ByID:    NewGetCustomerByIDHandler(repo),
		ByEmail: NewGetCustomerByEmailHandler(repo),
		List:    NewGetCustomersListHandler(repo),
	}
}

// CustomerHandler handles REST API requests for the customer resource.
// Every request goes through the dispatch pipeline, so logging and
// validation apply uniformly regardless of the HTTP entry point.
type CustomerHandler struct {
	pipeline *dispatch.Pipeline
	handlers *Handlers
}

// NewCustomerHandler creates a new CustomerHandler.
// Panics if pipeline or handlers is nil.
func NewCustomerHandler(pipeline *dispatch.Pipeline, handlers *Handlers) *CustomerHandler {
	if pipeline == nil {
		panic("customer.NewCustomerHandler: pipeline must not be nil")
	}
	if handlers == nil {
		panic("customer.NewCustomerHandler: handlers must not be nil")
	}
	return &CustomerHandler{pipeline: pipeline, handlers: handlers}
}

// Create handles POST /api/v1/customers.
func (h *CustomerHandler) Create(c *gin.Context) {
	var cmd CreateCustomer
	if !pkg.BindAndValidate(c, &cmd) {
		return
	}

	result, err := dispatch.Send(c.Request.Context(), h.pipeline, h.handlers.Create, cmd)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, pkg.Response{
		Code:    http.StatusCreated,
		Message: "success",
		Data:    result,
	})
}

// Get handles GET /api/v1/customers/:id.
func (h *CustomerHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	dto, err := dispatch.Send(c.Request.Context(), h.pipeline, h.handlers.ByID, GetCustomerByID{CustomerID: id})
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, dto)
}

// GetByEmail handles GET /api/v1/customers/by-email.
func (h *CustomerHandler) GetByEmail(c *gin.Context) {
	q := GetCustomerByEmail{Email: c.Query("email")}

	dto, err := dispatch.Send(c.Request.Context(), h.pipeline, h.handlers.ByEmail, q)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, dto)
}

// List handles GET /api/v1/customers.
func (h *CustomerHandler) List(c *gin.Context) {
	pageIndex, _ := strconv.Atoi(c.DefaultQuery("page_index", strconv.Itoa(defaultPageIndex)))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))

	q := GetCustomersList{PageIndex: pageIndex, PageSize: pageSize}

	result, err := dispatch.Send(c.Request.Context(), h.pipeline, h.handlers.List, q)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// Update handles PUT /api/v1/customers/:id.
func (h *CustomerHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	var cmd UpdateCustomer
	if !pkg.BindAndValidate(c, &cmd) {
		return
	}
	cmd.CustomerID = id

	result, err := dispatch.Send(c.Request.Context(), h.pipeline, h.handlers.Update, cmd)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, result)
}

// Delete handles DELETE /api/v1/customers/:id.
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	result, err := dispatch.Send(c.Request.Context(), h.pipeline, h.handlers.Delete, DeleteCustomer{CustomerID: id})
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, result)
}

// Restore handles POST /api/v1/customers/:id/restore.
func (h *CustomerHandler) Restore(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	result, err := dispatch.Send(c.Request.Context(), h.pipeline, h.handlers.Restore, RestoreCustomer{CustomerID: id})
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, result)
}

// parseID extracts and validates the :id path parameter.
func parseID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id: %s", idStr)
	}
	if id > uint64(^uint(0)) {
		return 0, fmt.Errorf("invalid id: %s", idStr)
	}
	return uint(id), nil
}
