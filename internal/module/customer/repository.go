package customer

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/simp-lee/customerbase/internal/domain"
	"github.com/simp-lee/customerbase/internal/pkg"
)

// customerRepository implements domain.CustomerRepository using GORM.
// Reads run against the database immediately; writes are staged and applied
// by the owning unit of work in a single transaction.
type customerRepository struct {
	db     *gorm.DB
	staged []stagedChange
}

// stagedChange applies one buffered write inside the commit transaction and
// reports the rows it affected.
type stagedChange func(tx *gorm.DB) (int64, error)

// NewCustomerRepository creates a read-only view over the given database.
// Staged writes on a shared instance are not safe across requests; command
// handlers obtain a fresh repository from the unit-of-work factory instead.
func NewCustomerRepository(db *gorm.DB) domain.CustomerRepository {
	return &customerRepository{db: db}
}

// Add stages the insert of a new aggregate. The store assigns the ID when
// the unit of work commits.
func (r *customerRepository) Add(_ context.Context, c *domain.Customer) error {
	r.staged = append(r.staged, func(tx *gorm.DB) (int64, error) {
		res := tx.Create(c)
		return res.RowsAffected, res.Error
	})
	return nil
}

// FindByID retrieves a customer by its primary key. Soft-deleted customers
// are returned like any other; the lifecycle state is data, not a filter.
func (r *customerRepository) FindByID(ctx context.Context, id uint) (*domain.Customer, error) {
	var c domain.Customer
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

// FindByEmail retrieves the single customer holding the given email. When
// the store contains more than one match the lookup fails with an ambiguous
// match error rather than silently picking one.
func (r *customerRepository) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	var customers []domain.Customer
	if err := r.db.WithContext(ctx).Where("email = ?", email).Limit(2).Find(&customers).Error; err != nil {
		return nil, mapError(err)
	}

	switch len(customers) {
	case 0:
		return nil, domain.ErrNotFound
	case 1:
		return &customers[0], nil
	default:
		return nil, domain.NewAppError(domain.CodeAmbiguous, "more than one customer matches email", nil)
	}
}

// ListPage returns the 1-based page of customers ordered by id. The window
// and the total cover the same unfiltered set, soft-deleted records
// included.
func (r *customerRepository) ListPage(ctx context.Context, pageIndex, pageSize int) ([]domain.Customer, int64, error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&domain.Customer{})

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, mapError(err)
	}

	var customers []domain.Customer
	if err := base.Scopes(pkg.Window(pageIndex, pageSize)).Order("id").Find(&customers).Error; err != nil {
		return nil, 0, mapError(err)
	}

	return customers, total, nil
}

// Exists reports whether an active customer already holds the given
// identity key. Soft-deleted customers do not block re-creation.
func (r *customerRepository) Exists(ctx context.Context, key domain.CandidateKey) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Customer{}).
		Where("first_name = ? AND last_name = ? AND email = ? AND state = ?",
			key.FirstName, key.LastName, key.Email, domain.StateActive).
		Count(&count).Error
	if err != nil {
		return false, mapError(err)
	}
	return count > 0, nil
}

// Update stages a save of the already-mutated aggregate.
func (r *customerRepository) Update(_ context.Context, c *domain.Customer) error {
	r.staged = append(r.staged, saveChange(c))
	return nil
}

// Delete stages the logical removal of the aggregate. Customer carries the
// soft-delete capability, so the row is updated in place, never erased.
func (r *customerRepository) Delete(_ context.Context, c *domain.Customer) error {
	c.MarkDeleted()
	r.staged = append(r.staged, saveChange(c))
	return nil
}

// Restore stages the reactivation of a soft-deleted aggregate.
func (r *customerRepository) Restore(_ context.Context, c *domain.Customer) error {
	c.MarkRestored()
	r.staged = append(r.staged, saveChange(c))
	return nil
}

func saveChange(c *domain.Customer) stagedChange {
	return func(tx *gorm.DB) (int64, error) {
		res := tx.Save(c)
		return res.RowsAffected, res.Error
	}
}

// mapError converts GORM errors to domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeDuplicate, "customer is not unique", err)
	}
	return domain.NewAppError(domain.CodePersistence, "database error", err)
}

// isDuplicateKeyError detects unique constraint violations by examining the
// error message. This is needed because not all GORM dialectors translate
// driver-level errors to gorm.ErrDuplicatedKey (e.g. the pure-Go SQLite driver).
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
