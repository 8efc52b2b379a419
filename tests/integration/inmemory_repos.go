package integration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Panmoni/localsolana-api/internal/core/domain"
	"github.com/Panmoni/localsolana-api/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	mu       sync.RWMutex
	seq      int64
	accounts map[int64]*domain.Account
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{accounts: make(map[int64]*domain.Account)}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, a *domain.Account) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.WalletAddress == a.WalletAddress {
			return 0, fmt.Errorf("insert account: %w", ports.ErrDuplicateKey)
		}
	}
	r.seq++
	a.ID = r.seq
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.accounts[a.ID] = a
	return a.ID, nil
}

func (r *inMemoryAccountRepo) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	return a, nil
}

func (r *inMemoryAccountRepo) GetByWallet(ctx context.Context, wallet string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.WalletAddress == wallet {
			return a, nil
		}
	}
	return nil, nil
}

func (r *inMemoryAccountRepo) Update(ctx context.Context, id int64, p ports.AccountPatch) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return false, nil
	}
	if p.Username != nil {
		a.Username = p.Username
	}
	if p.Email != nil {
		a.Email = p.Email
	}
	if p.TelegramUsername != nil {
		a.TelegramUsername = p.TelegramUsername
	}
	if p.TelegramID != nil {
		a.TelegramID = p.TelegramID
	}
	if p.ProfilePhotoURL != nil {
		a.ProfilePhotoURL = p.ProfilePhotoURL
	}
	if p.PhoneCountryCode != nil {
		a.PhoneCountryCode = p.PhoneCountryCode
	}
	if p.PhoneNumber != nil {
		a.PhoneNumber = p.PhoneNumber
	}
	if p.AvailableFrom != nil {
		a.AvailableFrom = p.AvailableFrom
	}
	if p.AvailableTo != nil {
		a.AvailableTo = p.AvailableTo
	}
	if p.Timezone != nil {
		a.Timezone = p.Timezone
	}
	a.UpdatedAt = time.Now()
	return true, nil
}

// --- In-Memory Offer Repo ---

type inMemoryOfferRepo struct {
	mu     sync.RWMutex
	seq    int64
	offers map[int64]*domain.Offer
}

func newInMemoryOfferRepo() *inMemoryOfferRepo {
	return &inMemoryOfferRepo{offers: make(map[int64]*domain.Offer)}
}

func (r *inMemoryOfferRepo) Create(ctx context.Context, o *domain.Offer) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	o.ID = r.seq
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	r.offers[o.ID] = o
	return o.ID, nil
}

func (r *inMemoryOfferRepo) GetByID(ctx context.Context, id int64) (*domain.Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.offers[id]
	if !ok {
		return nil, nil
	}
	return o, nil
}

func (r *inMemoryOfferRepo) List(ctx context.Context, params ports.OfferListParams) ([]domain.Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Offer
	for _, o := range r.offers {
		if params.OfferType != nil && o.OfferType != *params.OfferType {
			continue
		}
		if params.Token != nil && o.Token != *params.Token {
			continue
		}
		if params.CreatorAccountID != nil && o.CreatorAccountID != *params.CreatorAccountID {
			continue
		}
		result = append(result, *o)
	}
	return result, nil
}

func (r *inMemoryOfferRepo) Update(ctx context.Context, id int64, p ports.OfferPatch) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.offers[id]
	if !ok {
		return false, nil
	}
	if p.MinAmount != nil {
		o.MinAmount = *p.MinAmount
	}
	if p.MaxAmount != nil {
		o.MaxAmount = *p.MaxAmount
	}
	if p.TotalAvailableAmount != nil {
		o.TotalAvailableAmount = *p.TotalAvailableAmount
	}
	if p.RateAdjustment != nil {
		o.RateAdjustment = *p.RateAdjustment
	}
	if p.Terms != nil {
		o.Terms = *p.Terms
	}
	if p.FiatCurrency != nil {
		o.FiatCurrency = *p.FiatCurrency
	}
	if p.EscrowDepositTimeLimit != nil {
		o.EscrowDepositTimeLimit = *p.EscrowDepositTimeLimit
	}
	if p.FiatPaymentTimeLimit != nil {
		o.FiatPaymentTimeLimit = *p.FiatPaymentTimeLimit
	}
	o.UpdatedAt = time.Now()
	return true, nil
}

func (r *inMemoryOfferRepo) Delete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.offers[id]; !ok {
		return false, nil
	}
	delete(r.offers, id)
	return true, nil
}

// Reserve applies the same guard clause as the SQL version: the decrement is
// rejected when the remaining amount has fallen below min_amount or is
// insufficient, so concurrent initiations can never oversell the inventory.
func (r *inMemoryOfferRepo) Reserve(ctx context.Context, tx pgx.Tx, offerID int64, amount decimal.Decimal) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.offers[offerID]
	if !ok {
		return false, nil
	}
	if o.TotalAvailableAmount.LessThan(o.MinAmount) || o.TotalAvailableAmount.LessThan(amount) {
		return false, nil
	}
	o.TotalAvailableAmount = o.TotalAvailableAmount.Sub(amount)
	o.UpdatedAt = time.Now()
	return true, nil
}

// --- In-Memory Trade Repo ---

type inMemoryTradeRepo struct {
	mu       sync.RWMutex
	seq      int64
	trades   map[int64]*domain.Trade
	accounts *inMemoryAccountRepo
}

func newInMemoryTradeRepo(accounts *inMemoryAccountRepo) *inMemoryTradeRepo {
	return &inMemoryTradeRepo{
		trades:   make(map[int64]*domain.Trade),
		accounts: accounts,
	}
}

func (r *inMemoryTradeRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Trade) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	t.ID = r.seq
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	r.trades[t.ID] = t
	return t.ID, nil
}

func (r *inMemoryTradeRepo) GetByID(ctx context.Context, id int64) (*domain.Trade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.trades[id]
	if !ok {
		return nil, nil
	}
	return t, nil
}

func (r *inMemoryTradeRepo) List(ctx context.Context, params ports.TradeListParams) ([]domain.Trade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Trade
	for _, t := range r.trades {
		if params.OverallStatus != nil && t.OverallStatus != *params.OverallStatus {
			continue
		}
		if params.AccountID != nil && t.Leg1SellerAccountID != *params.AccountID && t.Leg1BuyerAccountID != *params.AccountID {
			continue
		}
		result = append(result, *t)
	}
	return result, nil
}

func (r *inMemoryTradeRepo) Update(ctx context.Context, id int64, p ports.TradePatch) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trades[id]
	if !ok {
		return false, nil
	}
	if p.Leg1State != nil {
		t.Leg1State = *p.Leg1State
	}
	if p.OverallStatus != nil {
		t.OverallStatus = *p.OverallStatus
	}
	if p.FiatPaid {
		now := time.Now()
		t.Leg1FiatPaidAt = &now
	}
	t.UpdatedAt = time.Now()
	return true, nil
}

func (r *inMemoryTradeRepo) SetEscrowAddress(ctx context.Context, id int64, address string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trades[id]
	if !ok {
		return false, nil
	}
	t.Leg1EscrowAddress = &address
	t.UpdatedAt = time.Now()
	return true, nil
}

func (r *inMemoryTradeRepo) ParticipantWallets(ctx context.Context, id int64) (string, string, error) {
	r.mu.RLock()
	t, ok := r.trades[id]
	r.mu.RUnlock()
	if !ok {
		return "", "", nil
	}
	seller, err := r.accounts.GetByID(ctx, t.Leg1SellerAccountID)
	if err != nil || seller == nil {
		return "", "", err
	}
	buyer, err := r.accounts.GetByID(ctx, t.Leg1BuyerAccountID)
	if err != nil || buyer == nil {
		return "", "", err
	}
	return seller.WalletAddress, buyer.WalletAddress, nil
}

// --- In-Memory Escrow Repo ---

type inMemoryEscrowRepo struct {
	mu      sync.RWMutex
	seq     int64
	escrows map[int64]*domain.Escrow
}

func newInMemoryEscrowRepo() *inMemoryEscrowRepo {
	return &inMemoryEscrowRepo{escrows: make(map[int64]*domain.Escrow)}
}

// CreateIdempotent mirrors the unique constraints on escrow_address and
// trade_id: a conflict on either is a silent no-op.
func (r *inMemoryEscrowRepo) CreateIdempotent(ctx context.Context, e *domain.Escrow) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.escrows {
		if existing.EscrowAddress == e.EscrowAddress || existing.TradeID == e.TradeID {
			return false, nil
		}
	}
	r.seq++
	e.ID = r.seq
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	r.escrows[e.ID] = e
	return true, nil
}

func (r *inMemoryEscrowRepo) GetByTradeID(ctx context.Context, tradeID int64) (*domain.Escrow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.escrows {
		if e.TradeID == tradeID {
			return e, nil
		}
	}
	return nil, nil
}

func (r *inMemoryEscrowRepo) GetByAddress(ctx context.Context, address string) (*domain.Escrow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.escrows {
		if e.EscrowAddress == address {
			return e, nil
		}
	}
	return nil, nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }

var (
	_ ports.AccountRepository = (*inMemoryAccountRepo)(nil)
	_ ports.OfferRepository   = (*inMemoryOfferRepo)(nil)
	_ ports.TradeRepository   = (*inMemoryTradeRepo)(nil)
	_ ports.EscrowRepository  = (*inMemoryEscrowRepo)(nil)
	_ ports.DBTransactor      = (*inMemoryTransactor)(nil)
)
