// Package wallet exposes credit wallet reads and the transfer transaction.
package wallet

import (
	"context"
	"math"

	"github.com/tunegrid/service_layer/internal/app/codec"
	"github.com/tunegrid/service_layer/internal/app/domain/wallet"
	"github.com/tunegrid/service_layer/internal/app/keyspace"
	"github.com/tunegrid/service_layer/internal/app/storage"
	"github.com/tunegrid/service_layer/internal/app/txn"
	"github.com/tunegrid/service_layer/internal/errors"
	"github.com/tunegrid/service_layer/internal/logging"
)

// InitialCoinBalance is granted to every newly created wallet.
const InitialCoinBalance = 100

// Service implements wallet operations. Reads are plain point lookups;
// TransferCredit is the one operation that runs through the transactional
// update engine, because concurrent transfers on the same wallet must not
// lose updates.
type Service struct {
	store  storage.Store
	engine *txn.Engine
	logger *logging.Logger
}

// NewService creates the wallet service.
func NewService(store storage.Store, engine *txn.Engine, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{store: store, engine: engine, logger: logger}
}

// Get reads a user's wallet. A missing record is a not-found failure,
// distinct from a decode failure.
func (s *Service) Get(ctx context.Context, userID string) (wallet.CreditWallet, error) {
	data, err := s.store.Get(ctx, keyspace.UserWallet(userID))
	if err == storage.ErrNotFound {
		return wallet.CreditWallet{}, errors.NotFound("wallet", userID)
	}
	if err != nil {
		return wallet.CreditWallet{}, errors.StoreUnavailable("get wallet", err)
	}
	return codec.CreditWallet.Decode(data)
}

// Create writes a new wallet with the initial balance and returns it.
func (s *Service) Create(ctx context.Context, userID string) (wallet.CreditWallet, error) {
	if userID == "" {
		return wallet.CreditWallet{}, errors.InvalidArgument("user id is required")
	}

	w := wallet.CreditWallet{CoinBalance: InitialCoinBalance, CreditBalance: 0}
	key := keyspace.UserWallet(userID)
	if err := s.store.Set(ctx, key, codec.CreditWallet.Encode(w)); err != nil {
		return wallet.CreditWallet{}, errors.StoreUnavailable("set wallet", err)
	}
	return w, nil
}

// TransferCredit atomically moves amount from the coin balance to the
// credit balance of the user's wallet and returns the persisted result.
// The sum of the two balances is unchanged by a successful transfer.
//
// A non-positive amount fails before any store access. Insufficient coins
// abort the transaction without a write and without a retry; only
// conditional-commit conflicts with concurrent transfers are retried, up to
// the engine's budget.
func (s *Service) TransferCredit(ctx context.Context, userID string, amount int32) (wallet.CreditWallet, error) {
	if amount <= 0 {
		return wallet.CreditWallet{}, errors.InvalidArgument("transfer amount must be positive")
	}

	key := keyspace.UserWallet(userID)
	var result wallet.CreditWallet

	transition := func(current map[string][]byte) (map[string][]byte, error) {
		data, ok := current[key]
		if !ok {
			return nil, errors.NotFound("wallet", userID)
		}
		w, err := codec.CreditWallet.Decode(data)
		if err != nil {
			return nil, err
		}

		if w.CoinBalance < amount {
			return nil, errors.InsufficientFunds(int64(w.CoinBalance), int64(amount))
		}
		if int64(w.CreditBalance)+int64(amount) > math.MaxInt32 {
			return nil, errors.InvalidArgument("transfer would overflow credit balance")
		}

		w.CoinBalance -= amount
		w.CreditBalance += amount
		result = w
		return map[string][]byte{key: codec.CreditWallet.Encode(w)}, nil
	}

	if err := s.engine.Run(ctx, "wallet_transfer", []string{key}, transition); err != nil {
		if errors.GetServiceError(err) == nil {
			return wallet.CreditWallet{}, errors.StoreUnavailable("transfer", err)
		}
		return wallet.CreditWallet{}, err
	}

	s.logger.WithTrace(ctx).Info("credit transfer committed",
		"user_id", userID, "amount", amount,
		"coin_balance", result.CoinBalance, "credit_balance", result.CreditBalance)
	return result, nil
}
