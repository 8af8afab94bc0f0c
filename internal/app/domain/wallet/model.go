package wallet

// CreditWallet tracks a user's spendable coins and accumulated credits.
// Both balances are never negative; a transfer conserves their sum.
type CreditWallet struct {
	CoinBalance   int32
	CreditBalance int32
}

// Total returns the combined balance. A transfer must leave it unchanged.
func (w CreditWallet) Total() int64 {
	return int64(w.CoinBalance) + int64(w.CreditBalance)
}
