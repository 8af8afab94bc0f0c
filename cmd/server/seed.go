package main

import (
	"context"
	"fmt"

	app "github.com/tunegrid/service_layer/internal/app"
	"github.com/tunegrid/service_layer/internal/app/codec"
	"github.com/tunegrid/service_layer/internal/app/domain/catalog"
	"github.com/tunegrid/service_layer/internal/app/domain/profile"
	"github.com/tunegrid/service_layer/internal/app/domain/wallet"
	"github.com/tunegrid/service_layer/internal/app/keyspace"
)

const seedUserID = "user:1234"

// seedDemoData loads the development fixture: a small genre catalog and a
// starter user holding 100 coins and 50 credits.
func seedDemoData(ctx context.Context, application *app.Application) error {
	genres := []catalog.Genre{
		{ID: "ROCK", Name: "Classic Rock", Listeners: 8000000},
		{ID: "POP", Name: "Global Pop Hits", Listeners: 15000000},
		{ID: "JAZZ", Name: "Smooth Jazz", Listeners: 500000},
	}
	for _, g := range genres {
		if _, err := application.Catalog.CreateGenre(ctx, g); err != nil {
			return fmt.Errorf("seed genre %s: %w", g.ID, err)
		}
	}

	if _, err := application.Profiles.Create(ctx, profile.UserProfile{
		ID:                seedUserID,
		Username:          "StarterUser",
		Email:             "starter@example.com",
		SubscriptionLevel: profile.LevelFree,
	}); err != nil {
		return fmt.Errorf("seed profile: %w", err)
	}

	// The fixture wallet carries pre-existing credits, so it is written
	// directly rather than through Wallets.Create.
	w := wallet.CreditWallet{CoinBalance: 100, CreditBalance: 50}
	key := keyspace.UserWallet(seedUserID)
	if err := application.Store().Set(ctx, key, codec.CreditWallet.Encode(w)); err != nil {
		return fmt.Errorf("seed wallet: %w", err)
	}
	return nil
}
