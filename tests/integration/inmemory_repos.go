package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory User Repo ---

// inMemoryUserRepo holds users and cascades deletes to the wallet repo,
// mirroring the ON DELETE behaviour of the real schema.
type inMemoryUserRepo struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]*domain.User
	wallets *inMemoryWalletRepo
}

func newInMemoryUserRepo(wallets *inMemoryWalletRepo) *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User), wallets: wallets}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return fmt.Errorf("email already exists")
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (r *inMemoryUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepo) List(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *inMemoryUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("user not found: %s", id)
	}
	delete(r.users, id)
	r.wallets.deleteByOwner(id)
	return nil
}

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[string]*domain.Wallet // keyed by wallet number
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[string]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.wallets[w.Number]; ok {
		return fmt.Errorf("wallet number already exists")
	}
	r.wallets[w.Number] = w
	return nil
}

func (r *inMemoryWalletRepo) GetByNumber(ctx context.Context, number string) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[number]
	if !ok {
		return nil, nil
	}
	copied := *w
	return &copied, nil
}

func (r *inMemoryWalletRepo) GetByNumberForUpdate(ctx context.Context, tx pgx.Tx, number string) (*domain.Wallet, error) {
	return r.GetByNumber(ctx, number)
}

func (r *inMemoryWalletRepo) NumberExists(ctx context.Context, number string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.wallets[number]
	return ok, nil
}

func (r *inMemoryWalletRepo) BalancesForOwner(ctx context.Context, ownerID uuid.UUID) (map[string]decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]decimal.Decimal)
	for _, w := range r.wallets {
		if w.OwnerID == ownerID {
			out[w.Number] = w.Balance
		}
	}
	return out, nil
}

func (r *inMemoryWalletRepo) CurrenciesForOwner(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, w := range r.wallets {
		if w.OwnerID == ownerID {
			out = append(out, w.Currency)
		}
	}
	return out, nil
}

func (r *inMemoryWalletRepo) AdjustBalance(ctx context.Context, tx pgx.Tx, number string, delta decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[number]
	if !ok {
		return fmt.Errorf("wallet not found: %s", number)
	}
	w.Balance = domain.RoundMoney(w.Balance.Add(delta))
	return nil
}

func (r *inMemoryWalletRepo) deleteByOwner(ownerID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for number, w := range r.wallets {
		if w.OwnerID == ownerID {
			delete(r.wallets, number)
		}
	}
}

// --- In-Memory Transfer Log Repo ---

// inMemoryTransferLogRepo is append-only: records are never updated or
// removed, and they survive wallet deletion like the real table does.
type inMemoryTransferLogRepo struct {
	mu   sync.RWMutex
	logs []domain.TransferLog
}

func newInMemoryTransferLogRepo() *inMemoryTransferLogRepo {
	return &inMemoryTransferLogRepo{}
}

func (r *inMemoryTransferLogRepo) Create(ctx context.Context, tx pgx.Tx, log *domain.TransferLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *inMemoryTransferLogRepo) List(ctx context.Context, params ports.TransferLogListParams) ([]domain.TransferLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wantOut := false
	wantIn := false
	for _, op := range params.Operations {
		switch op {
		case domain.OperationOut:
			wantOut = true
		case domain.OperationIn:
			wantIn = true
		}
	}

	result := make([]domain.TransferLog, 0)
	for _, l := range r.logs {
		if !l.PaidOn.After(params.DateFrom) || !l.PaidOn.Before(params.DateTo) {
			continue
		}
		matchOut := wantOut && l.Sender == params.WalletNumber
		matchIn := wantIn && l.Receiver == params.WalletNumber
		if !matchOut && !matchIn {
			continue
		}
		result = append(result, l)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].PaidOn.After(result[j].PaidOn)
	})
	if params.Limit > 0 && len(result) > params.Limit {
		result = result[:params.Limit]
	}
	return result, nil
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
