package customer

import (
	"context"

	"gorm.io/gorm"

	"github.com/simp-lee/customerbase/internal/domain"
	"github.com/simp-lee/customerbase/internal/pkg"
)

// unitOfWorkFactory hands out one unit of work per request.
type unitOfWorkFactory struct {
	db *gorm.DB
}

// NewUnitOfWorkFactory creates a domain.UnitOfWorkFactory backed by the
// given database handle.
func NewUnitOfWorkFactory(db *gorm.DB) domain.UnitOfWorkFactory {
	return &unitOfWorkFactory{db: db}
}

// New implements domain.UnitOfWorkFactory.
func (f *unitOfWorkFactory) New() domain.UnitOfWork {
	return &unitOfWork{
		db:   f.db,
		repo: &customerRepository{db: f.db},
	}
}

// unitOfWork collects staged repository writes and applies them atomically.
// Nothing reaches the database until Commit; a failed commit leaves the
// store untouched.
type unitOfWork struct {
	db   *gorm.DB
	repo *customerRepository
	done bool
}

// Customers implements domain.UnitOfWork.
func (u *unitOfWork) Customers() domain.CustomerRepository {
	return u.repo
}

// Commit implements domain.UnitOfWork. It runs every staged change in a
// single transaction and returns the total rows affected. A unit of work
// commits at most once.
func (u *unitOfWork) Commit(ctx context.Context) (int64, error) {
	if u.done {
		return 0, domain.NewAppError(domain.CodePersistence, "unit of work already committed", nil)
	}

	var affected int64
	err := pkg.WithTx(u.db.WithContext(ctx), func(tx *gorm.DB) error {
		for _, apply := range u.repo.staged {
			n, err := apply(tx)
			if err != nil {
				return err
			}
			affected += n
		}
		return nil
	})
	if err != nil {
		return 0, mapError(err)
	}

	u.done = true
	u.repo.staged = nil
	return affected, nil
}
