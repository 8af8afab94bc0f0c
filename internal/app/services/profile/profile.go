// Package profile exposes user profile and listen history operations.
package profile

import (
	"context"

	"github.com/tunegrid/service_layer/internal/app/codec"
	"github.com/tunegrid/service_layer/internal/app/domain/catalog"
	"github.com/tunegrid/service_layer/internal/app/domain/profile"
	"github.com/tunegrid/service_layer/internal/app/keyspace"
	"github.com/tunegrid/service_layer/internal/app/storage"
	"github.com/tunegrid/service_layer/internal/errors"
	"github.com/tunegrid/service_layer/internal/logging"
)

// Service implements profile CRUD and history access. Profile and history
// writes are unconditional overwrites (last-write-wins); only the wallet
// path has a cross-write invariant that needs concurrency control.
type Service struct {
	store  storage.KV
	logger *logging.Logger
}

// NewService creates the profile service.
func NewService(store storage.KV, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{store: store, logger: logger}
}

func validate(p profile.UserProfile) error {
	if p.ID == "" {
		return errors.InvalidArgument("user id is required")
	}
	if !p.SubscriptionLevel.Valid() {
		return errors.InvalidArgument("unknown subscription level")
	}
	return nil
}

// Create writes a new profile record and returns the value actually
// persisted. HistoryKey is always recomputed from the ID, never taken from
// the input.
func (s *Service) Create(ctx context.Context, p profile.UserProfile) (profile.UserProfile, error) {
	if err := validate(p); err != nil {
		return profile.UserProfile{}, err
	}
	p.HistoryKey = profile.DeriveHistoryKey(p.ID)

	key := keyspace.UserProfile(p.ID)
	if err := s.store.Set(ctx, key, codec.UserProfile.Encode(p)); err != nil {
		return profile.UserProfile{}, errors.StoreUnavailable("set profile", err)
	}
	return s.Get(ctx, p.ID)
}

// Get reads one profile record.
func (s *Service) Get(ctx context.Context, userID string) (profile.UserProfile, error) {
	data, err := s.store.Get(ctx, keyspace.UserProfile(userID))
	if err == storage.ErrNotFound {
		return profile.UserProfile{}, errors.NotFound("profile", userID)
	}
	if err != nil {
		return profile.UserProfile{}, errors.StoreUnavailable("get profile", err)
	}
	return codec.UserProfile.Decode(data)
}

// Update overwrites the profile record unconditionally.
func (s *Service) Update(ctx context.Context, p profile.UserProfile) (profile.UserProfile, error) {
	if err := validate(p); err != nil {
		return profile.UserProfile{}, err
	}
	p.HistoryKey = profile.DeriveHistoryKey(p.ID)

	key := keyspace.UserProfile(p.ID)
	if err := s.store.Set(ctx, key, codec.UserProfile.Encode(p)); err != nil {
		return profile.UserProfile{}, errors.StoreUnavailable("set profile", err)
	}
	return p, nil
}

// History returns the user's listen history. A user with no history record
// has an empty history, not an error.
func (s *Service) History(ctx context.Context, userID string) (catalog.ListenHistory, error) {
	data, err := s.store.Get(ctx, keyspace.UserHistory(userID))
	if err == storage.ErrNotFound {
		return catalog.ListenHistory{}, nil
	}
	if err != nil {
		return catalog.ListenHistory{}, errors.StoreUnavailable("get history", err)
	}
	return codec.ListenHistory.Decode(data)
}

// AppendHistory appends genre IDs to the user's listen history.
func (s *Service) AppendHistory(ctx context.Context, userID string, genreIDs ...string) (catalog.ListenHistory, error) {
	if userID == "" {
		return catalog.ListenHistory{}, errors.InvalidArgument("user id is required")
	}
	for _, id := range genreIDs {
		if id == "" {
			return catalog.ListenHistory{}, errors.InvalidArgument("genre id is required")
		}
	}

	history, err := s.History(ctx, userID)
	if err != nil {
		return catalog.ListenHistory{}, err
	}
	history.GenreIDs = append(history.GenreIDs, genreIDs...)

	key := keyspace.UserHistory(userID)
	if err := s.store.Set(ctx, key, codec.ListenHistory.Encode(history)); err != nil {
		return catalog.ListenHistory{}, errors.StoreUnavailable("set history", err)
	}
	return history, nil
}
