package service

import (
	"sync"
	"testing"
	"time"

	"github.com/devoriginal/account-backend/internal/app/repository"
	"github.com/devoriginal/account-backend/internal/db"
	"github.com/devoriginal/account-backend/pkg/mailer"
	"github.com/devoriginal/account-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-jwt-secret"

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) last() mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return mailer.Message{}
	}
	return m.sent[len(m.sent)-1]
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// testClock is a settable time source shared by the token manager and services
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	db          *gorm.DB
	accountRepo repository.AccountRepository
	resetRepo   repository.PasswordResetRepository
	mailer      *recordingMailer
	clock       *testClock
	tokens      *util.TokenManager
	accounts    AccountService
	auth        AuthService
}

func setupServiceTest(t *testing.T) *testEnv {
	t.Helper()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	clock := &testClock{now: time.Now()}
	tokens := util.NewTokenManager(testJWTSecret, time.Hour, util.WithClock(clock.Now))
	m := &recordingMailer{}
	accountRepo := repository.NewAccountRepository(testDB)
	accounts := NewAccountService(accountRepo, m)

	return &testEnv{
		db:          testDB,
		accountRepo: accountRepo,
		resetRepo:   repository.NewPasswordResetRepository(testDB),
		mailer:      m,
		clock:       clock,
		tokens:      tokens,
		accounts:    accounts,
		auth:        NewAuthService(accounts, tokens),
	}
}

func strPtr(s string) *string {
	return &s
}
