// Package listing は車両掲載の所有者チェックとユースケースを提供する。
package listing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/autobazar/internal/model"
	"github.com/hitoshi/autobazar/internal/repository"
)

var (
	// ErrNotAuthenticated は匿名の利用者による操作を表す。
	ErrNotAuthenticated = errors.New("listing: not authenticated")
	// ErrNotOwner は所有者以外による操作を表す。
	ErrNotOwner = errors.New("listing: principal is not the owner")
)

// Guard は掲載に対する操作が所有者本人によるものかを判定する。
type Guard struct{}

// AuthorizeOwnerAction はprincipalがlistingIDの所有者であることを確認し、掲載を返す。
// 掲載が存在しない場合はrepository.ErrListingNotFoundを返す。
func (Guard) AuthorizeOwnerAction(ctx context.Context, repo repository.ListingRepository, principal model.Principal, listingID string) (*model.Listing, error) {
	if principal.IsAnonymous() {
		return nil, ErrNotAuthenticated
	}

	// UUID形式でないIDは存在しない掲載として扱う。
	if _, err := uuid.Parse(listingID); err != nil {
		return nil, repository.ErrListingNotFound
	}

	listing, err := repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}
	if listing == nil {
		return nil, repository.ErrListingNotFound
	}
	if listing.OwnerID != principal.UserID {
		return nil, ErrNotOwner
	}

	return listing, nil
}

// DeleteOwned は所有者チェックと削除を同一トランザクションで行う。
// 掲載を削除する経路はこれ以外に存在しない。
func (g Guard) DeleteOwned(ctx context.Context, repo repository.ListingRepository, principal model.Principal, listingID string) error {
	return repo.WithinTx(ctx, func(tx repository.ListingRepository) error {
		listing, err := g.AuthorizeOwnerAction(ctx, tx, principal, listingID)
		if err != nil {
			return err
		}
		return tx.Delete(ctx, listing.ID)
	})
}
