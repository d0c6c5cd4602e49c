package customer

import (
	"context"

	"github.com/simp-lee/customerbase/internal/domain"
)

// uniquenessChecker answers the aggregate's uniqueness question from the
// store: a customer is unique when no active customer shares its identity
// key.
type uniquenessChecker struct {
	repo domain.CustomerRepository
}

// NewUniquenessChecker creates a domain.UniquenessChecker over the given
// repository.
func NewUniquenessChecker(repo domain.CustomerRepository) domain.UniquenessChecker {
	return &uniquenessChecker{repo: repo}
}

// IsUnique implements domain.UniquenessChecker.
func (u *uniquenessChecker) IsUnique(ctx context.Context, c *domain.Customer) (bool, error) {
	exists, err := u.repo.Exists(ctx, c.Key())
	if err != nil {
		return false, err
	}
	return !exists, nil
}
