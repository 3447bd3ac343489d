package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/chatapp/internal/common"
	"github.com/dmitrijs2005/chatapp/internal/dbx"
	"github.com/dmitrijs2005/chatapp/internal/logging"
	"github.com/dmitrijs2005/chatapp/internal/token"
	"github.com/dmitrijs2005/chatapp/internal/userservice/config"
	"github.com/dmitrijs2005/chatapp/internal/userservice/models"
	refreshtokensrepo "github.com/dmitrijs2005/chatapp/internal/userservice/repositories/refreshtokens"
	usersrepo "github.com/dmitrijs2005/chatapp/internal/userservice/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

// --- fakes ---

type fakeUsersRepo struct {
	byID       map[string]*models.User
	byUsername map[string]*models.User
	byEmail    map[string]*models.User
}

func newFakeUsersRepo(users ...*models.User) *fakeUsersRepo {
	f := &fakeUsersRepo{
		byID:       map[string]*models.User{},
		byUsername: map[string]*models.User{},
		byEmail:    map[string]*models.User{},
	}
	for _, u := range users {
		f.byID[u.ID] = u
		f.byUsername[u.Username] = u
		f.byEmail[u.Email] = u
	}
	return f
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.byID[u.ID] = u
	f.byUsername[u.Username] = u
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if u, ok := f.byUsername[username]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, ok := f.byUsername[username]
	return ok, nil
}

func (f *fakeUsersRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeUsersRepo) UpdateAvatar(ctx context.Context, id string, avatarURL string) error {
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.AvatarURL = avatarURL
	return nil
}

func (f *fakeUsersRepo) Search(ctx context.Context, keyword string) ([]*models.User, error) {
	var out []*models.User
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

// memRefreshRepo keeps rows in memory so tests can assert store state.
type memRefreshRepo struct {
	mu        sync.Mutex
	rows      map[string]*models.RefreshToken
	findCalls int

	deleteExpErr  error
	deleteExpFail int // remaining DeleteExpired failures before success
}

func newMemRefreshRepo() *memRefreshRepo {
	return &memRefreshRepo{rows: map[string]*models.RefreshToken{}}
}

func (f *memRefreshRepo) Create(ctx context.Context, t *models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[t.Token] = t
	return nil
}

func (f *memRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	if row, ok := f.rows[token]; ok {
		return row, nil
	}
	return nil, common.ErrorNotFound
}

func (f *memRefreshRepo) Delete(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, token)
	return nil
}

func (f *memRefreshRepo) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for tok, row := range f.rows {
		if row.UserID == userID {
			delete(f.rows, tok)
			n++
		}
	}
	return n, nil
}

func (f *memRefreshRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if f.deleteExpFail > 0 {
		f.deleteExpFail--
		return 0, f.deleteExpErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for tok, row := range f.rows {
		if row.ExpiresAt.Before(now) {
			delete(f.rows, tok)
			n++
		}
	}
	return n, nil
}

func (f *memRefreshRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *memRefreshRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository {
	return m.r
}

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func newAuthService(t *testing.T, db *sql.DB, rm *fakeRepoManager) *AuthService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:       testSecret,
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 2 * time.Hour,
	}
	return NewAuthService(db, rm, cfg, logging.NewJSONLogger())
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}
	return string(h)
}

func aliceRepo(t *testing.T) *fakeUsersRepo {
	t.Helper()
	return newFakeUsersRepo(&models.User{
		ID:           "u1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: mustHash(t, "correct-pw"),
		Status:       models.StatusActive,
	})
}

// --- login ---

func TestLogin_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := &fakeRepoManager{u: aliceRepo(t), r: newMemRefreshRepo()}
	s := newAuthService(t, db, rm)

	res, err := s.Login(context.Background(), "alice", "correct-pw")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatalf("empty tokens: %+v", res)
	}
	if res.User.Username != "alice" {
		t.Fatalf("unexpected user: %+v", res.User)
	}
	if rm.r.count() != 1 {
		t.Fatalf("want exactly one refresh record, got %d", rm.r.count())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestLogin_ByEmail(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := &fakeRepoManager{u: aliceRepo(t), r: newMemRefreshRepo()}
	s := newAuthService(t, db, rm)

	res, err := s.Login(context.Background(), "alice@example.com", "correct-pw")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.User.Username != "alice" {
		t.Fatalf("unexpected user: %+v", res.User)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: aliceRepo(t), r: newMemRefreshRepo()}
	s := newAuthService(t, db, rm)

	_, err := s.Login(context.Background(), "alice", "wrong-pw")
	if !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
	if rm.r.count() != 0 {
		t.Fatalf("store mutated on failed login")
	}
	// no Begin expected
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: newFakeUsersRepo(), r: newMemRefreshRepo()}
	s := newAuthService(t, db, rm)

	_, err := s.Login(context.Background(), "nobody", "whatever")
	// Indistinguishable from a wrong password.
	if !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_RotatesPriorRecords(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := &fakeRepoManager{u: aliceRepo(t), r: newMemRefreshRepo()}
	s := newAuthService(t, db, rm)

	first, err := s.Login(context.Background(), "alice", "correct-pw")
	if err != nil {
		t.Fatalf("first Login error: %v", err)
	}

	// JWT timestamps have second precision; make sure the second login
	// mints a distinct refresh token.
	time.Sleep(1100 * time.Millisecond)

	second, err := s.Login(context.Background(), "alice", "correct-pw")
	if err != nil {
		t.Fatalf("second Login error: %v", err)
	}
	if first.RefreshToken == second.RefreshToken {
		t.Fatalf("expected distinct refresh tokens")
	}
	if rm.r.count() != 1 {
		t.Fatalf("want exactly one refresh record after relogin, got %d", rm.r.count())
	}

	// The rotated-away token is structurally valid but no longer stored.
	_, err = s.Refresh(context.Background(), first.RefreshToken)
	if !errors.Is(err, common.ErrTokenNotFound) {
		t.Fatalf("want ErrTokenNotFound for rotated token, got %v", err)
	}
}

// --- refresh ---

func loginAlice(t *testing.T, s *AuthService, mock sqlmock.Sqlmock) *AuthResult {
	t.Helper()
	mock.ExpectBegin()
	mock.ExpectCommit()
	res, err := s.Login(context.Background(), "alice", "correct-pw")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	return res
}

func TestRefresh_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: aliceRepo(t), r: newMemRefreshRepo()}
	s := newAuthService(t, db, rm)
	logged := loginAlice(t, s, mock)

	first, err := s.Refresh(context.Background(), logged.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if first.AccessToken == "" {
		t.Fatalf("empty access token")
	}
	if first.RefreshToken != logged.RefreshToken {
		t.Fatalf("refresh token must not rotate on use")
	}

	second, err := s.Refresh(context.Background(), logged.RefreshToken)
	if err != nil {
		t.Fatalf("second Refresh error: %v", err)
	}
	if second.RefreshToken != logged.RefreshToken {
		t.Fatalf("refresh token must not rotate on use")
	}

	codec := token.NewCodec(testSecret)
	exp1, err := codec.ExpiresAt(first.AccessToken)
	if err != nil {
		t.Fatalf("ExpiresAt error: %v", err)
	}
	exp2, err := codec.ExpiresAt(second.AccessToken)
	if err != nil {
		t.Fatalf("ExpiresAt error: %v", err)
	}
	if exp2.Before(exp1) {
		t.Fatalf("access token expiry went backwards: %v then %v", exp1, exp2)
	}
}

func TestRefresh_InvalidToken(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: aliceRepo(t), r: newMemRefreshRepo()}
	s := newAuthService(t, db, rm)

	_, err := s.Refresh(context.Background(), "not-a-jwt")
	if !errors.Is(err, common.ErrTokenInvalid) {
		t.Fatalf("want ErrTokenInvalid, got %v", err)
	}
	// Structural validation happens before any store access.
	if rm.r.findCalls != 0 {
		t.Fatalf("store consulted for a structurally invalid token")
	}
}

func TestRefresh_NotFound(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: aliceRepo(t), r: newMemRefreshRepo()}
	s := newAuthService(t, db, rm)

	// Valid signature, no stored record.
	tok, err := token.NewCodec(testSecret).Issue("alice", time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = s.Refresh(context.Background(), tok)
	if !errors.Is(err, common.ErrTokenNotFound) {
		t.Fatalf("want ErrTokenNotFound, got %v", err)
	}
}

func TestRefresh_StoreExpiry(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: aliceRepo(t), r: newMemRefreshRepo()}
	s := newAuthService(t, db, rm)

	// Signature still valid, stored record already expired: the store is
	// authoritative.
	tok, err := token.NewCodec(testSecret).Issue("alice", time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	rm.r.rows[tok] = &models.RefreshToken{
		ID: "id-1", Token: tok, UserID: "u1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	_, err = s.Refresh(context.Background(), tok)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
	if rm.r.count() != 0 {
		t.Fatalf("expired record must be removed")
	}

	// The record is gone now, so a retry reports not-found.
	_, err = s.Refresh(context.Background(), tok)
	if !errors.Is(err, common.ErrTokenNotFound) {
		t.Fatalf("want ErrTokenNotFound after expiry cleanup, got %v", err)
	}
}

func TestRefresh_SubjectMismatch(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	users := newFakeUsersRepo(
		&models.User{ID: "u1", Username: "alice", Email: "alice@example.com"},
		&models.User{ID: "u2", Username: "bob", Email: "bob@example.com"},
	)
	rm := &fakeRepoManager{u: users, r: newMemRefreshRepo()}
	s := newAuthService(t, db, rm)

	// Token signed for alice, record owned by bob.
	tok, err := token.NewCodec(testSecret).Issue("alice", time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	rm.r.rows[tok] = &models.RefreshToken{
		ID: "id-1", Token: tok, UserID: "u2",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	_, err = s.Refresh(context.Background(), tok)
	if !errors.Is(err, common.ErrSubjectMismatch) {
		t.Fatalf("want ErrSubjectMismatch, got %v", err)
	}
}

// --- logout ---

func TestLogout_ThenRefresh(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: aliceRepo(t), r: newMemRefreshRepo()}
	s := newAuthService(t, db, rm)
	logged := loginAlice(t, s, mock)

	if err := s.Logout(context.Background(), logged.RefreshToken); err != nil {
		t.Fatalf("Logout error: %v", err)
	}

	_, err := s.Refresh(context.Background(), logged.RefreshToken)
	if !errors.Is(err, common.ErrTokenNotFound) {
		t.Fatalf("want ErrTokenNotFound after logout, got %v", err)
	}
}

func TestLogout_Twice(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: aliceRepo(t), r: newMemRefreshRepo()}
	s := newAuthService(t, db, rm)
	logged := loginAlice(t, s, mock)

	if err := s.Logout(context.Background(), logged.RefreshToken); err != nil {
		t.Fatalf("first Logout error: %v", err)
	}

	// Second logout reports "already logged out" via ErrTokenNotFound.
	err := s.Logout(context.Background(), logged.RefreshToken)
	if !errors.Is(err, common.ErrTokenNotFound) {
		t.Fatalf("want ErrTokenNotFound on second logout, got %v", err)
	}
}

func TestLogout_InvalidToken(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: aliceRepo(t), r: newMemRefreshRepo()}
	s := newAuthService(t, db, rm)

	err := s.Logout(context.Background(), "garbage")
	if !errors.Is(err, common.ErrTokenInvalid) {
		t.Fatalf("want ErrTokenInvalid, got %v", err)
	}
}
