package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tradelink/internal/core/apperror"
	"tradelink/internal/core/id"
)

type memUserRepo struct {
	byEmail map[string]*User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: map[string]*User{}}
}

func (r *memUserRepo) Create(ctx context.Context, user *User) error {
	r.byEmail[user.Email] = user
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	for _, u := range r.byEmail {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("user", userID.String())
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, apperror.NewNotFound("user", email)
	}
	return u, nil
}

func (r *memUserRepo) Update(ctx context.Context, user *User) error {
	r.byEmail[user.Email] = user
	return nil
}

func (r *memUserRepo) List(ctx context.Context) ([]*User, error) {
	var out []*User
	for _, u := range r.byEmail {
		out = append(out, u)
	}
	return out, nil
}

func newAuthService() (*Service, *memUserRepo) {
	repo := newMemUserRepo()
	svc := NewService(repo, NewJWTService(DefaultJWTConfig("test-secret")))
	return svc, repo
}

func seedUser(t *testing.T, repo *memUserRepo, email, password, role string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := NewUser(email, "Test User", string(hash), role)
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, repo := newAuthService()
	seedUser(t, repo, "sales@example.com", "s3cret-pass", RoleSales)

	result, err := svc.Login(ctx, "Sales@Example.com ", "s3cret-pass")
	require.NoError(t, err)

	assert.NotEmpty(t, result.Token)
	assert.Equal(t, RoleSales, result.User.Role)
	assert.NotNil(t, result.User.LastLoginAt)

	// The issued token round-trips into a user context
	uc, err := svc.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID.String(), uc.UserID)
	assert.Equal(t, RoleSales, uc.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	ctx := context.Background()
	svc, repo := newAuthService()
	user := seedUser(t, repo, "sales@example.com", "s3cret-pass", RoleSales)

	_, err := svc.Login(ctx, "sales@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, 1, user.FailedLoginAttempts)

	// Unknown email yields the same message
	_, err2 := svc.Login(ctx, "nobody@example.com", "whatever")
	require.Error(t, err2)
	assert.Equal(t, err.Error(), err2.Error())
}

func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	ctx := context.Background()
	svc, repo := newAuthService()
	user := seedUser(t, repo, "sales@example.com", "s3cret-pass", RoleSales)

	for i := 0; i < maxFailedAttempts; i++ {
		_, err := svc.Login(ctx, "sales@example.com", "wrong")
		require.Error(t, err)
	}
	assert.True(t, user.IsLocked())

	// Even the right password is refused while locked
	_, err := svc.Login(ctx, "sales@example.com", "s3cret-pass")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService()

	user, err := svc.Register(ctx, "Admin@Example.com", "Admin", "long-enough-pass", RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.NotEqual(t, "long-enough-pass", user.PasswordHash)

	// Duplicate email refused
	_, err = svc.Register(ctx, "admin@example.com", "Admin", "long-enough-pass", RoleAdmin)
	require.Error(t, err)

	// Short password refused
	_, err = svc.Register(ctx, "other@example.com", "Other", "short", RoleSales)
	require.Error(t, err)

	// Unknown role refused
	_, err = svc.Register(ctx, "third@example.com", "Third", "long-enough-pass", "warehouse")
	require.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc, _ := newAuthService()
	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
