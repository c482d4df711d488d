package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/autobazar/internal/database"
	"github.com/hitoshi/autobazar/internal/database/dbtest"
	"github.com/hitoshi/autobazar/internal/model"
)

func TestRebind(t *testing.T) {
	q := `SELECT a FROM t WHERE b = $1 AND c = $2 LIMIT $10`

	if got := rebind(database.DialectPostgres, q); got != q {
		t.Errorf("postgres rebind = %q, want unchanged", got)
	}
	want := `SELECT a FROM t WHERE b = ? AND c = ? LIMIT ?`
	if got := rebind(database.DialectSQLite, q); got != want {
		t.Errorf("sqlite rebind = %q, want %q", got, want)
	}
}

func TestIsUniqueViolation_Nil(t *testing.T) {
	if isUniqueViolation(nil) {
		t.Error("nil should not be a unique violation")
	}
	if isUniqueViolation(errors.New("boom")) {
		t.Error("plain error should not be a unique violation")
	}
}

// createUser はテスト用ユーザーを作成する。
func createUser(t *testing.T, db *sql.DB, identity string) *model.User {
	t.Helper()
	user := &model.User{
		ID:           uuid.New().String(),
		Identity:     identity,
		PasswordHash: "$2a$10$hash",
		CreatedAt:    time.Now().UTC(),
	}
	if err := NewSQLUserRepo(db, database.DialectSQLite).Create(context.Background(), user); err != nil {
		t.Fatalf("ユーザー作成に失敗: %v", err)
	}
	return user
}

func intPtr(v int) *int { return &v }

func TestSQLUserRepo_CreateAndFind(t *testing.T) {
	db := dbtest.NewSQLite(t)
	repo := NewSQLUserRepo(db, database.DialectSQLite)
	ctx := context.Background()

	user := createUser(t, db, "alice12@gmail.com")

	got, err := repo.FindByIdentity(ctx, "alice12@gmail.com")
	if err != nil {
		t.Fatalf("FindByIdentity returned error: %v", err)
	}
	if got == nil || got.ID != user.ID {
		t.Fatalf("FindByIdentity = %+v, want id %s", got, user.ID)
	}
	if got.PasswordHash != user.PasswordHash {
		t.Errorf("PasswordHash = %q, want %q", got.PasswordHash, user.PasswordHash)
	}

	byID, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if byID == nil || byID.Identity != "alice12@gmail.com" {
		t.Errorf("FindByID = %+v", byID)
	}
}

func TestSQLUserRepo_FindMissingReturnsNil(t *testing.T) {
	db := dbtest.NewSQLite(t)
	repo := NewSQLUserRepo(db, database.DialectSQLite)

	got, err := repo.FindByIdentity(context.Background(), "nobody@gmail.com")
	if err != nil {
		t.Fatalf("FindByIdentity returned error: %v", err)
	}
	if got != nil {
		t.Errorf("FindByIdentity = %+v, want nil", got)
	}
}

func TestSQLUserRepo_CreateDuplicate(t *testing.T) {
	db := dbtest.NewSQLite(t)
	repo := NewSQLUserRepo(db, database.DialectSQLite)
	first := createUser(t, db, "alice12@gmail.com")

	err := repo.Create(context.Background(), &model.User{
		ID:           uuid.New().String(),
		Identity:     "alice12@gmail.com",
		PasswordHash: "$2a$10$other",
		CreatedAt:    time.Now().UTC(),
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("Create duplicate error = %v, want ErrDuplicate", err)
	}

	got, _ := repo.FindByIdentity(context.Background(), "alice12@gmail.com")
	if got.ID != first.ID || got.PasswordHash != first.PasswordHash {
		t.Errorf("first record changed: %+v", got)
	}
}

func TestSQLSessionRepo_Lifecycle(t *testing.T) {
	db := dbtest.NewSQLite(t)
	repo := NewSQLSessionRepo(db, database.DialectSQLite)
	ctx := context.Background()
	user := createUser(t, db, "alice12@gmail.com")

	now := time.Now().UTC()
	session := &model.Session{ID: "token-1", UserID: user.ID, ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	if err := repo.Create(ctx, session); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	got, err := repo.FindByID(ctx, "token-1")
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if got == nil || got.UserID != user.ID {
		t.Fatalf("FindByID = %+v", got)
	}
	if !got.ExpiresAt.Equal(session.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, session.ExpiresAt)
	}

	if err := repo.DeleteByID(ctx, "token-1"); err != nil {
		t.Fatalf("DeleteByID returned error: %v", err)
	}
	if err := repo.DeleteByID(ctx, "token-1"); err != nil {
		t.Fatalf("second DeleteByID should be a no-op: %v", err)
	}
	got, _ = repo.FindByID(ctx, "token-1")
	if got != nil {
		t.Errorf("session still present after delete: %+v", got)
	}
}

func TestSQLSessionRepo_DeleteExpiredBefore(t *testing.T) {
	db := dbtest.NewSQLite(t)
	repo := NewSQLSessionRepo(db, database.DialectSQLite)
	ctx := context.Background()
	user := createUser(t, db, "alice12@gmail.com")

	now := time.Now().UTC()
	sessions := []*model.Session{
		{ID: "expired", UserID: user.ID, ExpiresAt: now.Add(-time.Hour), CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "active", UserID: user.ID, ExpiresAt: now.Add(time.Hour), CreatedAt: now},
	}
	for _, s := range sessions {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	n, err := repo.DeleteExpiredBefore(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpiredBefore returned error: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
	if s, _ := repo.FindByID(ctx, "active"); s == nil {
		t.Error("active session was deleted")
	}
}

func TestSQLListingRepo_CreateListFindDelete(t *testing.T) {
	db := dbtest.NewSQLite(t)
	repo := NewSQLListingRepo(db, database.DialectSQLite)
	ctx := context.Background()
	owner := createUser(t, db, "alice12@gmail.com")
	other := createUser(t, db, "bobbie@seznam.cz")

	base := time.Now().UTC()
	first := &model.Listing{ID: uuid.New().String(), OwnerID: owner.ID, Brand: "skoda", Model: "Octavia", Year: 2018, Price: intPtr(250000), Mileage: intPtr(120000), CreatedAt: base}
	second := &model.Listing{ID: uuid.New().String(), OwnerID: owner.ID, Brand: "bmw", Model: "X5", Year: 2020, CreatedAt: base.Add(time.Second)}
	foreign := &model.Listing{ID: uuid.New().String(), OwnerID: other.ID, Brand: "audi", Model: "A4", Year: 2015, CreatedAt: base}

	for _, l := range []*model.Listing{first, second, foreign} {
		if err := repo.Create(ctx, l); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	mine, err := repo.ListByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListByOwner returned error: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("ListByOwner returned %d listings, want 2", len(mine))
	}
	if mine[0].ID != first.ID || mine[1].ID != second.ID {
		t.Errorf("ListByOwner order = [%s %s], want [%s %s]", mine[0].ID, mine[1].ID, first.ID, second.ID)
	}
	if mine[0].Price == nil || *mine[0].Price != 250000 {
		t.Errorf("Price = %v, want 250000", mine[0].Price)
	}
	if mine[1].Price != nil || mine[1].Mileage != nil {
		t.Errorf("Price/Mileage should be nil, got %v/%v", mine[1].Price, mine[1].Mileage)
	}

	found, err := repo.FindByID(ctx, foreign.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if found == nil || found.OwnerID != other.ID {
		t.Fatalf("FindByID = %+v", found)
	}

	if err := repo.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if got, _ := repo.FindByID(ctx, first.ID); got != nil {
		t.Errorf("FindByID after delete = %+v, want nil", got)
	}
	mine, _ = repo.ListByOwner(ctx, owner.ID)
	if len(mine) != 1 || mine[0].ID != second.ID {
		t.Errorf("ListByOwner after delete = %+v", mine)
	}

	if err := repo.Delete(ctx, first.ID); !errors.Is(err, ErrListingNotFound) {
		t.Errorf("second Delete error = %v, want ErrListingNotFound", err)
	}
}

func TestSQLListingRepo_ListByOwnerEmpty(t *testing.T) {
	db := dbtest.NewSQLite(t)
	repo := NewSQLListingRepo(db, database.DialectSQLite)

	got, err := repo.ListByOwner(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListByOwner returned error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ListByOwner = %#v, want empty non-nil slice", got)
	}
}

func TestSQLListingRepo_CreateRequiresOwner(t *testing.T) {
	repo := NewSQLListingRepo(nil, database.DialectSQLite)
	err := repo.Create(context.Background(), &model.Listing{ID: "l1", Brand: "skoda", Model: "Fabia", Year: 2010})
	if !errors.Is(err, ErrAnonymousOwner) {
		t.Errorf("Create error = %v, want ErrAnonymousOwner", err)
	}
}

func TestSQLListingRepo_WithinTxRollsBack(t *testing.T) {
	db := dbtest.NewSQLite(t)
	repo := NewSQLListingRepo(db, database.DialectSQLite)
	ctx := context.Background()
	owner := createUser(t, db, "alice12@gmail.com")

	listing := &model.Listing{ID: uuid.New().String(), OwnerID: owner.ID, Brand: "skoda", Model: "Fabia", Year: 2010, CreatedAt: time.Now().UTC()}
	if err := repo.Create(ctx, listing); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	errAbort := errors.New("abort")
	err := repo.WithinTx(ctx, func(tx ListingRepository) error {
		if err := tx.Delete(ctx, listing.ID); err != nil {
			return err
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("WithinTx error = %v, want errAbort", err)
	}

	if got, _ := repo.FindByID(ctx, listing.ID); got == nil {
		t.Error("listing deleted despite rollback")
	}

	err = repo.WithinTx(ctx, func(tx ListingRepository) error {
		found, err := tx.FindByID(ctx, listing.ID)
		if err != nil || found == nil {
			t.Fatalf("FindByID in tx = %+v, %v", found, err)
		}
		return tx.Delete(ctx, listing.ID)
	})
	if err != nil {
		t.Fatalf("WithinTx returned error: %v", err)
	}
	if got, _ := repo.FindByID(ctx, listing.ID); got != nil {
		t.Error("listing still present after committed delete")
	}
}

func TestSQLLoginAuditRepo_AppendAndList(t *testing.T) {
	db := dbtest.NewSQLite(t)
	repo := NewSQLLoginAuditRepo(db, database.DialectSQLite)
	ctx := context.Background()
	user := createUser(t, db, "alice12@gmail.com")

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		err := repo.Append(ctx, &model.LoginAudit{
			ID:         uuid.New().String(),
			UserID:     user.ID,
			Identity:   user.Identity,
			LoggedInAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Append returned error: %v", err)
		}
	}

	audits, err := repo.ListByUserID(ctx, user.ID, 2)
	if err != nil {
		t.Fatalf("ListByUserID returned error: %v", err)
	}
	if len(audits) != 2 {
		t.Fatalf("ListByUserID returned %d records, want 2", len(audits))
	}
	if !audits[0].LoggedInAt.After(audits[1].LoggedInAt) {
		t.Errorf("audits not ordered newest first: %v, %v", audits[0].LoggedInAt, audits[1].LoggedInAt)
	}
}
