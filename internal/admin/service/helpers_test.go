package service

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/peakform/peakform/internal/admin/domain"
	"github.com/peakform/peakform/internal/admin/store/drivers/sqlite"
	"github.com/peakform/peakform/pkg/cryptox"
	"github.com/peakform/peakform/pkg/idx"
	"github.com/peakform/peakform/pkg/mailx"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "admin-service-test")
	if err != nil {
		log.Fatalf("failed to create temp dir: %v", err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

// seedAccount inserts an account with a real argon2 hash so login paths can be
// exercised end to end.
func seedAccount(t *testing.T, st *sqlite.Store, email, password string, role domain.Role) domain.Account {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	now := time.Now().UTC()
	account := domain.Account{
		ID:           idx.New().String(),
		Name:         "Test Account",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Accounts().CreateAccount(context.Background(), account))
	return account
}

// seedInvitation inserts an invitation directly, bypassing the service, so
// individual states (expired, used) can be arranged.
func seedInvitation(t *testing.T, st *sqlite.Store, email string, expiresAt time.Time) domain.Invitation {
	t.Helper()

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)

	now := time.Now().UTC()
	invitation := domain.Invitation{
		ID:        idx.New().String(),
		Email:     email,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, st.Invitations().CreateInvitation(context.Background(), invitation))
	return invitation
}

// captureMailer records sends for assertions instead of delivering them.
type captureMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *captureMailer) Send(_ context.Context, msg mailx.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg.To)
	return nil
}
