package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/autobazar/internal/database"
	"github.com/hitoshi/autobazar/internal/model"
)

// SQLListingRepo はdatabase/sqlを使用した掲載リポジトリ。
// WithinTxから渡されるインスタンスはトランザクションに束縛される。
type SQLListingRepo struct {
	db      querier
	beginTx func(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	dialect database.Dialect
}

// NewSQLListingRepo はSQLListingRepoを生成する。
func NewSQLListingRepo(db *sql.DB, dialect database.Dialect) *SQLListingRepo {
	r := &SQLListingRepo{db: db, dialect: dialect}
	if db != nil {
		r.beginTx = db.BeginTx
	}
	return r
}

const listingColumns = `id, owner_id, brand, model, year, price, mileage, created_at`

// Create は掲載を作成する。
func (r *SQLListingRepo) Create(ctx context.Context, listing *model.Listing) error {
	if listing.OwnerID == "" {
		return ErrAnonymousOwner
	}

	_, err := r.db.ExecContext(ctx,
		rebind(r.dialect, `INSERT INTO listings (`+listingColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`),
		listing.ID, listing.OwnerID, listing.Brand, listing.Model, listing.Year,
		listing.Price, listing.Mileage, listing.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert listing: %w", err)
	}
	return nil
}

// ListByOwner は所有者の掲載を作成日時の昇順で返す。
func (r *SQLListingRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Listing, error) {
	rows, err := r.db.QueryContext(ctx,
		rebind(r.dialect, `SELECT `+listingColumns+` FROM listings
		 WHERE owner_id = $1
		 ORDER BY created_at ASC, id ASC`),
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	defer rows.Close()

	listings := []model.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate listings: %w", err)
	}

	return listings, nil
}

// FindByID は指定IDの掲載を取得する。見つからない場合はnilを返す。
// PostgreSQLのトランザクション内では行ロックを取得する。
func (r *SQLListingRepo) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	if r.inTx() && r.dialect == database.DialectPostgres {
		query += ` FOR UPDATE`
	}

	l, err := scanListing(r.db.QueryRowContext(ctx, rebind(r.dialect, query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}
	return l, nil
}

// Delete は指定IDの掲載を削除する。
func (r *SQLListingRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, rebind(r.dialect, `DELETE FROM listings WHERE id = $1`), id)
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrListingNotFound
	}
	return nil
}

// WithinTx はトランザクションに束縛されたリポジトリでfnを実行する。
// すでにトランザクション内の場合は同じトランザクションでfnを実行する。
func (r *SQLListingRepo) WithinTx(ctx context.Context, fn func(ListingRepository) error) error {
	if r.inTx() {
		return fn(r)
	}
	if r.beginTx == nil {
		return errors.New("listing repository has no database")
	}

	tx, err := r.beginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&SQLListingRepo{db: tx, dialect: r.dialect}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *SQLListingRepo) inTx() bool {
	_, ok := r.db.(*sql.Tx)
	return ok
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(s rowScanner) (*model.Listing, error) {
	var (
		l       model.Listing
		price   sql.NullInt64
		mileage sql.NullInt64
	)
	if err := s.Scan(&l.ID, &l.OwnerID, &l.Brand, &l.Model, &l.Year, &price, &mileage, &l.CreatedAt); err != nil {
		return nil, err
	}
	if price.Valid {
		v := int(price.Int64)
		l.Price = &v
	}
	if mileage.Valid {
		v := int(mileage.Int64)
		l.Mileage = &v
	}
	l.CreatedAt = l.CreatedAt.UTC()
	return &l, nil
}

// compile-time interface check
var _ ListingRepository = (*SQLListingRepo)(nil)
