package listing

import (
	"context"
	"time"

	"github.com/hitoshi/autobazar/internal/metrics"
	"github.com/hitoshi/autobazar/internal/model"
	"github.com/hitoshi/autobazar/internal/repository"
)

// --- モック定義 ---

type mockListingRepo struct {
	createFn      func(ctx context.Context, listing *model.Listing) error
	listByOwnerFn func(ctx context.Context, ownerID string) ([]model.Listing, error)
	findByIDFn    func(ctx context.Context, id string) (*model.Listing, error)
	deleteFn      func(ctx context.Context, id string) error
	withinTxCalls int
}

func (m *mockListingRepo) Create(ctx context.Context, listing *model.Listing) error {
	if m.createFn != nil {
		return m.createFn(ctx, listing)
	}
	return nil
}

func (m *mockListingRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Listing, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID)
	}
	return []model.Listing{}, nil
}

func (m *mockListingRepo) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockListingRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockListingRepo) WithinTx(_ context.Context, fn func(repository.ListingRepository) error) error {
	m.withinTxCalls++
	return fn(m)
}

type recordingMetrics struct {
	created    int
	deleted    int
	rejections []string
	denials    []string
}

func (r *recordingMetrics) RecordRegistration(string) {}
func (r *recordingMetrics) RecordLogin(string) {}
func (r *recordingMetrics) RecordListingCreated() { r.created++ }
func (r *recordingMetrics) RecordListingDeleted() { r.deleted++ }
func (r *recordingMetrics) RecordListingRejection(reason string) { r.rejections = append(r.rejections, reason) }
func (r *recordingMetrics) RecordAuthorizationDenial(reason string) { r.denials = append(r.denials, reason) }
func (r *recordingMetrics) RecordHTTPStatus(int) {}
func (r *recordingMetrics) RecordRequestLatency(time.Duration) {}

// --- compile-time interface checks ---
var _ repository.ListingRepository = (*mockListingRepo)(nil)
var _ metrics.MetricsCollector = (*recordingMetrics)(nil)
