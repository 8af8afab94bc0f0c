package catalog

import (
	"context"
	"testing"

	domain "github.com/tunegrid/service_layer/internal/app/domain/catalog"
	"github.com/tunegrid/service_layer/internal/app/keyspace"
	"github.com/tunegrid/service_layer/internal/app/storage/memory"
	"github.com/tunegrid/service_layer/internal/errors"
)

func TestCreateGenreReadsBack(t *testing.T) {
	store := memory.New()
	svc := NewService(store, nil)

	g := domain.Genre{ID: "ROCK", Name: "Classic Rock", Listeners: 8000000}
	created, err := svc.CreateGenre(context.Background(), g)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created != g {
		t.Fatalf("read-back %+v differs from input %+v", created, g)
	}
}

func TestCreateGenreValidation(t *testing.T) {
	svc := NewService(memory.New(), nil)

	if _, err := svc.CreateGenre(context.Background(), domain.Genre{Name: "No ID"}); !errors.HasCode(err, errors.CodeInvalidArgument) {
		t.Fatalf("expected invalid argument for empty id, got %v", err)
	}
	if _, err := svc.CreateGenre(context.Background(), domain.Genre{ID: "X", Listeners: -1}); !errors.HasCode(err, errors.CodeInvalidArgument) {
		t.Fatalf("expected invalid argument for negative listeners, got %v", err)
	}
}

func TestIndexConsistency(t *testing.T) {
	store := memory.New()
	svc := NewService(store, nil)
	ctx := context.Background()

	g := domain.Genre{ID: "JAZZ", Name: "Smooth Jazz", Listeners: 500000}
	if _, err := svc.CreateGenre(ctx, g); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Creating again must not duplicate the index entry.
	if _, err := svc.CreateGenre(ctx, g); err != nil {
		t.Fatalf("recreate: %v", err)
	}

	genres, err := svc.ListGenres(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	count := 0
	for _, got := range genres {
		if got.ID == g.ID {
			count++
			if got != g {
				t.Fatalf("listed genre %+v differs from created %+v", got, g)
			}
		}
	}
	if count != 1 {
		t.Fatalf("genre appears %d times in the listing, want 1", count)
	}
}

func TestListSkipsCorruptRecords(t *testing.T) {
	store := memory.New()
	svc := NewService(store, nil)
	ctx := context.Background()

	if _, err := svc.CreateGenre(ctx, domain.Genre{ID: "POP", Name: "Global Pop Hits", Listeners: 15000000}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// An indexed member whose record is garbage must be dropped, not fail
	// the whole read.
	_ = store.SAdd(ctx, keyspace.GenreIndex, "BROKEN")
	_ = store.Set(ctx, keyspace.Genre("BROKEN"), []byte{0xff, 0xff})

	// Same for an index entry with no record at all.
	_ = store.SAdd(ctx, keyspace.GenreIndex, "GHOST")

	genres, err := svc.ListGenres(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(genres) != 1 || genres[0].ID != "POP" {
		t.Fatalf("expected only the readable genre, got %+v", genres)
	}
}

func TestGetGenreNotFound(t *testing.T) {
	svc := NewService(memory.New(), nil)
	if _, err := svc.GetGenre(context.Background(), "missing"); !errors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
