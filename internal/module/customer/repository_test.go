package customer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/simp-lee/customerbase/internal/domain"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	if err := db.AutoMigrate(&domain.Customer{}); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, firstName, lastName, email string) *domain.Customer {
	t.Helper()
	c := &domain.Customer{
		FirstName:         firstName,
		LastName:          lastName,
		Email:             email,
		PhoneNumber:       "+15550100",
		DateOfBirth:       time.Date(1990, 4, 5, 0, 0, 0, 0, time.UTC),
		BankAccountNumber: "NL91ABNA0417164300",
		State:             domain.StateActive,
		CreateDate:        time.Now().UTC(),
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return c
}

func TestRepository_AddIsStagedUntilCommit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	uow := NewUnitOfWorkFactory(db).New()
	c, err := domain.CreateNewCustomer(ctx,
		"Ann", "Lee", "ann.lee@example.com", "+15550100",
		time.Date(1990, 4, 5, 0, 0, 0, 0, time.UTC), "NL91ABNA0417164300", nil)
	if err != nil {
		t.Fatalf("CreateNewCustomer: %v", err)
	}
	if err := uow.Customers().Add(ctx, c); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Nothing written yet.
	var count int64
	if err := db.Model(&domain.Customer{}).Count(&count).Error; err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Fatalf("count before commit = %d, want 0", count)
	}

	affected, err := uow.Commit(ctx)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if affected != 1 {
		t.Errorf("affected = %d, want 1", affected)
	}
	if c.ID == 0 {
		t.Error("expected store-assigned ID after commit")
	}

	got, err := NewCustomerRepository(db).FindByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Email != "ann.lee@example.com" {
		t.Errorf("Email = %q", got.Email)
	}
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewCustomerRepository(db)

	_, err := repo.FindByID(context.Background(), 404)
	if !domain.IsNotFound(err) {
		t.Fatalf("FindByID error = %v, want not found", err)
	}
}

func TestRepository_FindByEmail(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewCustomerRepository(db)

	t.Run("no match", func(t *testing.T) {
		_, err := repo.FindByEmail(ctx, "nobody@example.com")
		if !domain.IsNotFound(err) {
			t.Fatalf("error = %v, want not found", err)
		}
	})

	seedCustomer(t, db, "Ann", "Lee", "ann.lee@example.com")

	t.Run("single match", func(t *testing.T) {
		got, err := repo.FindByEmail(ctx, "ann.lee@example.com")
		if err != nil {
			t.Fatalf("FindByEmail: %v", err)
		}
		if got.FirstName != "Ann" {
			t.Errorf("FirstName = %q", got.FirstName)
		}
	})

	// A second record with the same email, even soft-deleted, makes the
	// lookup ambiguous.
	dup := seedCustomer(t, db, "Anna", "Leigh", "ann.lee@example.com")
	dup.MarkDeleted()
	if err := db.Save(dup).Error; err != nil {
		t.Fatalf("Save: %v", err)
	}

	t.Run("ambiguous match", func(t *testing.T) {
		_, err := repo.FindByEmail(ctx, "ann.lee@example.com")
		if !domain.IsAmbiguousMatch(err) {
			t.Fatalf("error = %v, want ambiguous match", err)
		}
	})
}

func TestRepository_ListPage(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewCustomerRepository(db)

	for i := 1; i <= 25; i++ {
		seedCustomer(t, db, "Name", "Surname", fmt.Sprintf("c%02d@example.com", i))
	}

	page1, total, err := repo.ListPage(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 25 {
		t.Errorf("total = %d, want 25", total)
	}
	if len(page1) != 10 {
		t.Fatalf("len(page1) = %d, want 10", len(page1))
	}
	if page1[0].ID != 1 {
		t.Errorf("page1 starts at id %d, want 1", page1[0].ID)
	}

	page3, total, err := repo.ListPage(ctx, 3, 10)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 25 {
		t.Errorf("total = %d, want 25", total)
	}
	if len(page3) != 5 {
		t.Fatalf("len(page3) = %d, want 5", len(page3))
	}
	if page3[0].ID != 21 {
		t.Errorf("page3 starts at id %d, want 21", page3[0].ID)
	}
}

func TestRepository_ListPage_IncludesSoftDeleted(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewCustomerRepository(db)

	seedCustomer(t, db, "Ann", "Lee", "ann@example.com")
	gone := seedCustomer(t, db, "Bea", "Chan", "bea@example.com")
	gone.MarkDeleted()
	if err := db.Save(gone).Error; err != nil {
		t.Fatalf("Save: %v", err)
	}

	items, total, err := repo.ListPage(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("total = %d, len = %d, want 2 and 2", total, len(items))
	}
	if !items[1].IsDeleted() {
		t.Error("soft-deleted customer missing from listing")
	}
}

func TestRepository_Exists(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewCustomerRepository(db)

	c := seedCustomer(t, db, "Ann", "Lee", "ann.lee@example.com")

	exists, err := repo.Exists(ctx, c.Key())
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Error("expected active customer key to exist")
	}

	// Any component of the triple differing frees the key.
	other := domain.CandidateKey{FirstName: "Ann", LastName: "Lee", Email: "other@example.com"}
	exists, err = repo.Exists(ctx, other)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("different email should not collide")
	}

	// Soft-deleting releases the key for reuse.
	c.MarkDeleted()
	if err := db.Save(c).Error; err != nil {
		t.Fatalf("Save: %v", err)
	}
	exists, err = repo.Exists(ctx, c.Key())
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("soft-deleted customer should not hold the key")
	}
}

func TestRepository_UpdateDeleteRestore_StagedWrites(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	seeded := seedCustomer(t, db, "Ann", "Lee", "ann.lee@example.com")

	factory := NewUnitOfWorkFactory(db)

	// Delete.
	uow := factory.New()
	c, err := uow.Customers().FindByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	c.Delete()
	if err := uow.Customers().Delete(ctx, c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := uow.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got, err := NewCustomerRepository(db).FindByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !got.IsDeleted() {
		t.Fatal("customer not soft-deleted after commit")
	}

	// Restore.
	uow = factory.New()
	c, err = uow.Customers().FindByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	c.Restore()
	if err := uow.Customers().Restore(ctx, c); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if _, err := uow.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got, err = NewCustomerRepository(db).FindByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.IsDeleted() {
		t.Fatal("customer still deleted after restore commit")
	}

	// Update.
	uow = factory.New()
	c, err = uow.Customers().FindByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	c.Update("Bea", "Chan", "bea.chan@example.com", "+15550199",
		time.Date(1985, 12, 1, 0, 0, 0, 0, time.UTC), "GB29NWBK60161331926819")
	if err := uow.Customers().Update(ctx, c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := uow.Commit(ctx); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got, err = NewCustomerRepository(db).FindByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Email != "bea.chan@example.com" {
		t.Errorf("Email = %q after update", got.Email)
	}
	if got.ModifiedDate == nil {
		t.Error("ModifiedDate not persisted")
	}
}

func TestUniquenessChecker(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewCustomerRepository(db)
	checker := NewUniquenessChecker(repo)

	seedCustomer(t, db, "Ann", "Lee", "ann.lee@example.com")

	taken := &domain.Customer{FirstName: "Ann", LastName: "Lee", Email: "ann.lee@example.com"}
	unique, err := checker.IsUnique(ctx, taken)
	if err != nil {
		t.Fatalf("IsUnique: %v", err)
	}
	if unique {
		t.Error("expected taken key to be reported non-unique")
	}

	free := &domain.Customer{FirstName: "Bea", LastName: "Chan", Email: "bea.chan@example.com"}
	unique, err = checker.IsUnique(ctx, free)
	if err != nil {
		t.Fatalf("IsUnique: %v", err)
	}
	if !unique {
		t.Error("expected free key to be reported unique")
	}
}
