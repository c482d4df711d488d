package listing

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/autobazar/internal/model"
)

var owner = model.Principal{UserID: "owner", SessionID: "s1"}

func validInput() AddListingInput {
	return AddListingInput{Brand: "bmw", Model: "X5", Year: Int(2020), Price: Int(900000), Mileage: Int(50000)}
}

func assertAPIErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v (%T), want *model.APIError", err, err)
	}
	if apiErr.Code != code {
		t.Errorf("code = %s, want %s", apiErr.Code, code)
	}
}

func TestAddListing_Success(t *testing.T) {
	var created *model.Listing
	repo := &mockListingRepo{
		createFn: func(_ context.Context, l *model.Listing) error {
			created = l
			return nil
		},
	}
	rec := &recordingMetrics{}
	svc := NewService(repo, testRules(true), rec)

	got, err := svc.AddListing(context.Background(), owner, validInput())
	if err != nil {
		t.Fatalf("AddListing returned error: %v", err)
	}
	if created != got {
		t.Fatal("listing was not persisted")
	}
	if got.ID == "" || got.OwnerID != "owner" || got.CreatedAt.IsZero() {
		t.Errorf("listing = %+v", got)
	}
	if rec.created != 1 {
		t.Errorf("created metric = %d, want 1", rec.created)
	}
}

func TestAddListing_AnonymousRejectedBeforeValidation(t *testing.T) {
	repo := &mockListingRepo{
		createFn: func(_ context.Context, _ *model.Listing) error {
			t.Fatal("Create must not be called")
			return nil
		},
	}
	svc := NewService(repo, testRules(true), nil)

	_, err := svc.AddListing(context.Background(), model.Anonymous, AddListingInput{Brand: "trabant"})
	assertAPIErrorCode(t, err, model.ErrCodeNotAuthenticated)
}

func TestAddListing_InvalidModelWritesNothing(t *testing.T) {
	repo := &mockListingRepo{
		createFn: func(_ context.Context, _ *model.Listing) error {
			t.Fatal("Create must not be called")
			return nil
		},
	}
	rec := &recordingMetrics{}
	svc := NewService(repo, testRules(true), rec)

	in := validInput()
	in.Brand, in.Model = "skoda", "911"
	_, err := svc.AddListing(context.Background(), owner, in)
	assertAPIErrorCode(t, err, model.ErrCodeInvalidModel)
	if len(rec.rejections) != 1 || rec.rejections[0] != model.ErrCodeInvalidModel {
		t.Errorf("rejections = %v", rec.rejections)
	}
}

func TestAddListing_StorageError(t *testing.T) {
	storageErr := errors.New("disk full")
	repo := &mockListingRepo{
		createFn: func(_ context.Context, _ *model.Listing) error { return storageErr },
	}
	svc := NewService(repo, testRules(true), nil)

	_, err := svc.AddListing(context.Background(), owner, validInput())
	if !errors.Is(err, storageErr) {
		t.Errorf("error = %v, want wrapped storage error", err)
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		t.Error("storage error must not be an APIError")
	}
}

func TestListMyListings_Anonymous(t *testing.T) {
	svc := NewService(&mockListingRepo{}, testRules(true), nil)
	_, err := svc.ListMyListings(context.Background(), model.Anonymous)
	assertAPIErrorCode(t, err, model.ErrCodeNotAuthenticated)
}

func TestListMyListings_QueriesByOwner(t *testing.T) {
	var gotOwner string
	repo := &mockListingRepo{
		listByOwnerFn: func(_ context.Context, ownerID string) ([]model.Listing, error) {
			gotOwner = ownerID
			return []model.Listing{{ID: "a"}}, nil
		},
	}
	svc := NewService(repo, testRules(true), nil)

	got, err := svc.ListMyListings(context.Background(), owner)
	if err != nil {
		t.Fatalf("ListMyListings returned error: %v", err)
	}
	if gotOwner != "owner" || len(got) != 1 {
		t.Errorf("owner = %q, listings = %v", gotOwner, got)
	}
}

func TestDeleteListing_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		principal model.Principal
		id        string
		wantCode  string
	}{
		{"匿名", model.Anonymous, listingID, model.ErrCodeNotAuthenticated},
		{"存在しない", owner, missingID, model.ErrCodeListingNotFound},
		{"他人の掲載", model.Principal{UserID: "stranger"}, listingID, model.ErrCodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingMetrics{}
			svc := NewService(ownedRepo("owner"), testRules(true), rec)

			err := svc.DeleteListing(context.Background(), tt.principal, tt.id)
			assertAPIErrorCode(t, err, tt.wantCode)
			if len(rec.denials) != 1 || rec.denials[0] != tt.wantCode {
				t.Errorf("denials = %v, want [%s]", rec.denials, tt.wantCode)
			}
		})
	}
}

func TestDeleteListing_Success(t *testing.T) {
	rec := &recordingMetrics{}
	svc := NewService(ownedRepo("owner"), testRules(true), rec)

	if err := svc.DeleteListing(context.Background(), owner, listingID); err != nil {
		t.Fatalf("DeleteListing returned error: %v", err)
	}
	if rec.deleted != 1 {
		t.Errorf("deleted metric = %d, want 1", rec.deleted)
	}
}
