package store

import (
	"context"
	"errors"
	"time"

	"github.com/peakform/peakform/internal/admin/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// ListParams carries search/sort/pagination options for listing endpoints.
// Sort columns are whitelisted by each repo; anything else falls back to the
// repo's default ordering.
type ListParams struct {
	Search    string
	Sort      string
	Direction string // "asc" or "desc"
	Page      int    // 1-based
	PerPage   int
}

// Page wraps a result slice with pagination metadata.
type Page[T any] struct {
	Items      []T
	Total      int
	PageNumber int
	PerPage    int
	LastPage   int
}

// Store is the root data access interface. Concrete drivers (sqlite) implement
// this. It exposes sub-repositories to keep concerns tidy and testable.
type Store interface {
	Accounts() Accounts
	Invitations() Invitations
	Coaches() Coaches
	Customers() Customers
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// GetAccountByID returns an account by id.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail is used during login and duplicate-email checks.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// CreateAccount inserts a new account (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateAccount(ctx context.Context, a domain.Account) error

	// ListAccounts applies search (name/email), whitelisted sorting and
	// pagination.
	ListAccounts(ctx context.Context, p ListParams) (Page[domain.Account], error)

	// UpdateAccount mutates name/email/role and bumps updated_at.
	UpdateAccount(ctx context.Context, id, name, email string, role domain.Role) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, id, newHash string) error

	// DeleteAccount cascades to coaches/customers and refresh tokens (per schema).
	DeleteAccount(ctx context.Context, id string) error

	// DeleteAccounts bulk-deletes by id and reports how many rows went away.
	DeleteAccounts(ctx context.Context, ids []string) (int, error)

	// IsEmpty returns true if there are no accounts.
	IsEmpty(ctx context.Context) (bool, error)

	// UpdateTOTPSecret sets the pending TOTP secret for an account.
	UpdateTOTPSecret(ctx context.Context, id, secret string) error

	// EnableTOTP marks two-factor as confirmed (sets totp_enabled_at).
	EnableTOTP(ctx context.Context, id string) error

	// DisableTOTP clears totp_enabled_at and totp_secret.
	DisableTOTP(ctx context.Context, id string) error
}

type Invitations interface {
	// CreateInvitation writes a new invitation with its raw token. The token
	// column is unique; collisions surface as ErrAlreadyExists.
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	// GetInvitationByToken returns the invitation regardless of state. Used
	// for the ordered validation checks.
	GetInvitationByToken(ctx context.Context, token string) (domain.Invitation, error)

	// ConsumeInvitation atomically sets used_at/used_by iff the invitation is
	// still unconsumed. Returns false when another consumer won the race.
	ConsumeInvitation(ctx context.Context, token, accountID string, usedAt time.Time) (bool, error)

	// ListInvitations returns invitations newest first, for the admin screen.
	ListInvitations(ctx context.Context) ([]domain.Invitation, error)
}

type Coaches interface {
	GetCoachByID(ctx context.Context, id string) (domain.Coach, error)

	// ListCoachesByAccount returns the account's coaches newest first.
	ListCoachesByAccount(ctx context.Context, accountID string) ([]domain.Coach, error)

	// LatestCoachNumber returns the highest coach_number for the account, or
	// "" when the account has none.
	LatestCoachNumber(ctx context.Context, accountID string) (string, error)

	// CreateCoach inserts a new coach. Duplicate email -> ErrAlreadyExists.
	CreateCoach(ctx context.Context, c domain.Coach) error

	UpdateCoach(ctx context.Context, c domain.Coach) error
	DeleteCoach(ctx context.Context, id string) error
}

type Customers interface {
	GetCustomerByID(ctx context.Context, id string) (domain.Customer, error)

	// ListCustomersByAccount returns the account's customers in customer number order.
	ListCustomersByAccount(ctx context.Context, accountID string) ([]domain.Customer, error)

	// LatestCustomerNumber returns the highest customer_number for the
	// account, or "" when the account has none.
	LatestCustomerNumber(ctx context.Context, accountID string) (string, error)

	CreateCustomer(ctx context.Context, c domain.Customer) error
	UpdateCustomer(ctx context.Context, c domain.Customer) error
	DeleteCustomer(ctx context.Context, id string) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token by its sha256 fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked=1 for the token id, sets updated_at.
	RevokeRefreshToken(ctx context.Context, id string) error

	// RevokeAllAccountRefreshTokens bulk revocation (password change).
	RevokeAllAccountRefreshTokens(ctx context.Context, accountID string) error

	// DeleteExpiredRefreshTokens removes tokens past their expiry or already
	// revoked, reporting how many rows went away. Housekeeping calls this.
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int, error)
}
