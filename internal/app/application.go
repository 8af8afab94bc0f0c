// Package app composes the storage capability, the transactional update
// engine and the domain services into a running application. Business
// logic lives in internal/app/services; this package only wires it.
package app

import (
	catalogsvc "github.com/tunegrid/service_layer/internal/app/services/catalog"
	profilesvc "github.com/tunegrid/service_layer/internal/app/services/profile"
	walletsvc "github.com/tunegrid/service_layer/internal/app/services/wallet"
	"github.com/tunegrid/service_layer/internal/app/storage"
	"github.com/tunegrid/service_layer/internal/app/storage/memory"
	"github.com/tunegrid/service_layer/internal/app/txn"
	"github.com/tunegrid/service_layer/internal/logging"
	"github.com/tunegrid/service_layer/internal/metrics"
)

// Config carries the application-level dependencies. A nil Store defaults
// to the in-memory implementation; a nil Logger discards output.
type Config struct {
	Store   storage.Store
	Logger  *logging.Logger
	Metrics *metrics.Metrics
	Txn     txn.Config
}

// Application ties the domain services together.
type Application struct {
	Catalog  *catalogsvc.Service
	Profiles *profilesvc.Service
	Wallets  *walletsvc.Service

	store storage.Store
}

// New builds a fully initialised application.
func New(cfg Config) *Application {
	if cfg.Store == nil {
		cfg.Store = memory.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if cfg.Txn.Logger == nil {
		cfg.Txn.Logger = cfg.Logger
	}
	if cfg.Txn.Metrics == nil {
		cfg.Txn.Metrics = cfg.Metrics
	}

	engine := txn.New(cfg.Store, cfg.Txn)

	return &Application{
		Catalog:  catalogsvc.NewService(cfg.Store, cfg.Logger),
		Profiles: profilesvc.NewService(cfg.Store, cfg.Logger),
		Wallets:  walletsvc.NewService(cfg.Store, engine, cfg.Logger),
		store:    cfg.Store,
	}
}

// Store exposes the underlying storage capability, mainly for seeding.
func (a *Application) Store() storage.Store { return a.store }
