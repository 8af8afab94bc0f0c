// Package catalog exposes genre repository operations.
package catalog

import (
	"context"

	"github.com/tunegrid/service_layer/internal/app/codec"
	"github.com/tunegrid/service_layer/internal/app/domain/catalog"
	"github.com/tunegrid/service_layer/internal/app/keyspace"
	"github.com/tunegrid/service_layer/internal/app/storage"
	"github.com/tunegrid/service_layer/internal/errors"
	"github.com/tunegrid/service_layer/internal/logging"
)

// Service implements genre create/read over the key-value store.
type Service struct {
	store  storage.KV
	logger *logging.Logger
}

// NewService creates the genre service.
func NewService(store storage.KV, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{store: store, logger: logger}
}

// CreateGenre writes the genre record, registers its ID in the genre index
// set, then re-reads and returns the value actually persisted. An ID
// appears in the index only after its record was written.
func (s *Service) CreateGenre(ctx context.Context, g catalog.Genre) (catalog.Genre, error) {
	if g.ID == "" {
		return catalog.Genre{}, errors.InvalidArgument("genre id is required")
	}
	if g.Listeners < 0 {
		return catalog.Genre{}, errors.InvalidArgument("listeners must not be negative")
	}

	key := keyspace.Genre(g.ID)
	if err := s.store.Set(ctx, key, codec.Genre.Encode(g)); err != nil {
		return catalog.Genre{}, errors.StoreUnavailable("set genre", err)
	}
	if err := s.store.SAdd(ctx, keyspace.GenreIndex, g.ID); err != nil {
		return catalog.Genre{}, errors.StoreUnavailable("index genre", err)
	}

	return s.GetGenre(ctx, g.ID)
}

// GetGenre reads one genre record.
func (s *Service) GetGenre(ctx context.Context, id string) (catalog.Genre, error) {
	data, err := s.store.Get(ctx, keyspace.Genre(id))
	if err == storage.ErrNotFound {
		return catalog.Genre{}, errors.NotFound("genre", id)
	}
	if err != nil {
		return catalog.Genre{}, errors.StoreUnavailable("get genre", err)
	}
	return codec.Genre.Decode(data)
}

// ListGenres reads the index set and resolves each member's record. Members
// whose record is missing or fails to decode are skipped rather than
// failing the whole read; this partial-result policy keeps the catalog
// readable when individual records are corrupt.
func (s *Service) ListGenres(ctx context.Context) ([]catalog.Genre, error) {
	ids, err := s.store.SMembers(ctx, keyspace.GenreIndex)
	if err != nil {
		return nil, errors.StoreUnavailable("read genre index", err)
	}

	genres := make([]catalog.Genre, 0, len(ids))
	for _, id := range ids {
		g, err := s.GetGenre(ctx, id)
		if err != nil {
			s.logger.WithTrace(ctx).Warn("skipping unreadable genre record",
				"genre_id", id, "err", err)
			continue
		}
		genres = append(genres, g)
	}
	return genres, nil
}
