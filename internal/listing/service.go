package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/autobazar/internal/metrics"
	"github.com/hitoshi/autobazar/internal/model"
	"github.com/hitoshi/autobazar/internal/repository"
)

// Service は掲載管理のサービス層。
// 掲載の追加、自分の掲載一覧、削除のユースケースを提供する。
type Service struct {
	repo    repository.ListingRepository
	rules   Rules
	guard   Guard
	metrics metrics.MetricsCollector
	now     func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.ListingRepository, rules Rules, mc metrics.MetricsCollector) *Service {
	if mc == nil {
		mc = metrics.Nop{}
	}
	return &Service{
		repo:    repo,
		rules:   rules,
		metrics: mc,
		now:     time.Now,
	}
}

// AddListing は掲載を検証して保存する。検証に失敗した場合は何も書き込まない。
func (s *Service) AddListing(ctx context.Context, principal model.Principal, in AddListingInput) (*model.Listing, error) {
	if principal.IsAnonymous() {
		s.metrics.RecordListingRejection(model.ErrCodeNotAuthenticated)
		return nil, model.NewNotAuthenticatedError()
	}

	listing, apiErr := s.rules.Validate(in)
	if apiErr != nil {
		s.metrics.RecordListingRejection(apiErr.Code)
		slog.Info("listing rejected",
			slog.String("user_id", principal.UserID),
			slog.String("reason", apiErr.Code),
		)
		return nil, apiErr
	}

	listing.ID = uuid.New().String()
	listing.OwnerID = principal.UserID
	listing.CreatedAt = s.now().UTC()

	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("掲載の保存に失敗しました: %w", err)
	}

	s.metrics.RecordListingCreated()
	slog.Info("listing created",
		slog.String("user_id", principal.UserID),
		slog.String("listing_id", listing.ID),
	)
	return listing, nil
}

// ListMyListings は利用者本人の掲載を作成順に返す。
func (s *Service) ListMyListings(ctx context.Context, principal model.Principal) ([]model.Listing, error) {
	if principal.IsAnonymous() {
		return nil, model.NewNotAuthenticatedError()
	}

	listings, err := s.repo.ListByOwner(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("掲載一覧の取得に失敗しました: %w", err)
	}
	return listings, nil
}

// DeleteListing は所有者本人の掲載を削除する。
func (s *Service) DeleteListing(ctx context.Context, principal model.Principal, listingID string) error {
	err := s.guard.DeleteOwned(ctx, s.repo, principal, listingID)
	switch {
	case err == nil:
		s.metrics.RecordListingDeleted()
		slog.Info("listing deleted",
			slog.String("user_id", principal.UserID),
			slog.String("listing_id", listingID),
		)
		return nil
	case errors.Is(err, ErrNotAuthenticated):
		s.metrics.RecordAuthorizationDenial(model.ErrCodeNotAuthenticated)
		return model.NewNotAuthenticatedError()
	case errors.Is(err, repository.ErrListingNotFound):
		s.metrics.RecordAuthorizationDenial(model.ErrCodeListingNotFound)
		return model.NewListingNotFoundError(listingID)
	case errors.Is(err, ErrNotOwner):
		s.metrics.RecordAuthorizationDenial(model.ErrCodeForbidden)
		slog.Warn("delete denied for non-owner",
			slog.String("user_id", principal.UserID),
			slog.String("listing_id", listingID),
		)
		return model.NewForbiddenError()
	default:
		return fmt.Errorf("掲載の削除に失敗しました: %w", err)
	}
}
