package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"unisphere/config"
	"unisphere/internal/model"
	"unisphere/internal/repository"
	"unisphere/pkg/db"
	"unisphere/pkg/jwt"
	"unisphere/pkg/password"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	p := db.NewProviderWithDialector(config.DatabaseConfig{MaxIdle: 1, MaxOpen: 1}, sqlite.Open(":memory:"))
	t.Cleanup(func() { _ = p.Close() })
	require.NoError(t, p.AutoMigrate(model.All()...))
	gdb, err := p.Get()
	require.NoError(t, err)
	return repository.NewStore(gdb)
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{EmailDomain: "@chitkara.edu.in", OTPTTL: 10 * time.Minute, OTPCooldown: time.Minute}
}

func testJWT() *jwt.JWTService {
	return jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", Issuer: "unisphere", ExpireTime: time.Hour})
}

type fakeMailer struct {
	dev   bool
	err   error
	codes []string
}

func (m *fakeMailer) SendOTP(_ context.Context, _, code string, _ time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.codes = append(m.codes, code)
	return nil
}

func (m *fakeMailer) DevMode() bool { return m.dev }

type fakePusher struct {
	mu     sync.Mutex
	online map[uint]bool
	sent   map[uint][][]byte
}

func newFakePusher(online ...uint) *fakePusher {
	p := &fakePusher{online: map[uint]bool{}, sent: map[uint][][]byte{}}
	for _, id := range online {
		p.online[id] = true
	}
	return p
}

func (p *fakePusher) SendToUser(userID uint, payload []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.online[userID] {
		return false
	}
	p.sent[userID] = append(p.sent[userID], payload)
	return true
}

func (p *fakePusher) count(userID uint) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent[userID])
}

// createUser 直接写库创建用户，密码为 "secret123"
func createUser(t *testing.T, store *repository.Store, name string) *model.User {
	t.Helper()
	hash, err := password.Hash("secret123")
	require.NoError(t, err)
	u := &model.User{Username: name, Email: name + "@chitkara.edu.in", Password: hash, IsVerified: true}
	require.NoError(t, store.Users.Create(context.Background(), u))
	return u
}
