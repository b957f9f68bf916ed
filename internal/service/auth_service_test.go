package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
	"github.com/spec-kit/issue-tracker/internal/repository/mocks"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

var testAuthConfig = config.AuthConfig{JWTSecret: "test-secret", JWTExpire: "7d", BcryptCost: bcrypt.MinCost}

func newAuthService(t *testing.T) (*AuthService, *mocks.UserRepository) {
	t.Helper()
	repo := &mocks.UserRepository{}
	svc, err := NewAuthService(testAuthConfig, AuthDependencies{UserRepo: repo})
	require.NoError(t, err)
	return svc, repo
}

func existingUser(t *testing.T, id, email, password string) *domain.User {
	t.Helper()
	user, err := domain.NewUser("Ada", email, password, bcrypt.MinCost)
	require.NoError(t, err)
	user.ID = id
	return user
}

func TestNewAuthService_RequiresSecret(t *testing.T) {
	_, err := NewAuthService(config.AuthConfig{JWTExpire: "7d"}, AuthDependencies{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConfiguration))
}

func TestRegisterThenLogin(t *testing.T) {
	svc, repo := newAuthService(t)
	ctx := context.Background()
	var stored *domain.User

	repo.On("GetByEmail", ctx, "ada@example.com").Return(nil, repository.ErrNotFound).Once()
	repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*domain.User)
			stored.ID = "u1"
		}).
		Return(nil).Once()

	session, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", session.User.ID)
	assert.Equal(t, "Ada", session.User.Name)
	assert.NotEqual(t, "secret1", stored.PasswordHash)

	claims, err := svc.TokenManager().ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)

	repo.On("GetByEmail", ctx, "ada@example.com").Return(stored, nil).Once()

	login, err := svc.Login(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u1", login.User.ID)

	claims, err = svc.TokenManager().ParseToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	repo.AssertExpectations(t)
}

func TestRegister_ExistingEmail(t *testing.T) {
	svc, repo := newAuthService(t)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "ada@example.com").Return(&domain.User{ID: "u1"}, nil).Once()

	_, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"})

	assert.True(t, apperrors.HasCode(err, apperrors.CodeUserExists))
	assert.Equal(t, "User already exists with this email", err.Error())
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_MissingCredentials(t *testing.T) {
	svc, repo := newAuthService(t)

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Ada", Email: "ada@example.com"})

	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCredentials))
	repo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestRegister_StorageErrorPropagates(t *testing.T) {
	svc, repo := newAuthService(t)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "ada@example.com").Return(nil, repository.ErrNotFound).Once()
	repo.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicateEmail).Once()

	_, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"})

	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

func TestRegister_OverlongPassword(t *testing.T) {
	svc, repo := newAuthService(t)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "ada@example.com").Return(nil, repository.ErrNotFound).Once()

	_, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: strings.Repeat("x", 80)})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Equal(t, "password", apperrors.ToDomainError(err).Details["field"])
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svc, repo := newAuthService(t)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrNotFound).Once()
	repo.On("GetByEmail", ctx, "ada@example.com").
		Return(existingUser(t, "u1", "ada@example.com", "secret1"), nil).Once()

	_, unknownErr := svc.Login(ctx, "ghost@example.com", "secret1")
	_, wrongErr := svc.Login(ctx, "ada@example.com", "wrong")

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	assert.True(t, apperrors.HasCode(unknownErr, apperrors.CodeInvalidCredentials))
	assert.True(t, apperrors.HasCode(wrongErr, apperrors.CodeInvalidCredentials))
}

func TestLogin_EmptyInputSkipsLookup(t *testing.T) {
	svc, repo := newAuthService(t)

	_, err := svc.Login(context.Background(), "", "x")

	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidCredentials))
	repo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestLogin_MissingHashIsNotACredentialFailure(t *testing.T) {
	svc, repo := newAuthService(t)
	ctx := context.Background()

	repo.On("GetByEmail", ctx, "ada@example.com").
		Return(&domain.User{ID: "u1", Email: "ada@example.com"}, nil).Once()

	_, err := svc.Login(ctx, "ada@example.com", "secret1")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPasswordUnavailable)
	assert.False(t, apperrors.HasCode(err, apperrors.CodeInvalidCredentials))
}

func TestCurrentUser(t *testing.T) {
	svc, repo := newAuthService(t)
	ctx := context.Background()
	boom := errors.New("db down")

	repo.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1"}, nil).Once()
	repo.On("GetByID", ctx, "u2").Return(nil, repository.ErrNotFound).Once()
	repo.On("GetByID", ctx, "u3").Return(nil, boom).Once()

	user, err := svc.CurrentUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	user, err = svc.CurrentUser(ctx, "u2")
	assert.NoError(t, err)
	assert.Nil(t, user)

	_, err = svc.CurrentUser(ctx, "u3")
	assert.ErrorIs(t, err, boom)
}

func TestUpdateProfile(t *testing.T) {
	svc, repo := newAuthService(t)
	ctx := context.Background()
	name := " Ada L. "
	email := "ada.l@example.com"

	repo.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1", Name: "Ada", Email: "ada@example.com"}, nil).Once()
	repo.On("GetByEmail", ctx, email).Return(nil, repository.ErrNotFound).Once()
	repo.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Name == "Ada L." && u.Email == email
	})).Return(nil).Once()

	user, err := svc.UpdateProfile(ctx, "u1", ProfileInput{Name: &name, Email: &email})

	require.NoError(t, err)
	assert.Equal(t, email, user.Email)
	repo.AssertExpectations(t)
}

func TestUpdateProfile_EmailTaken(t *testing.T) {
	svc, repo := newAuthService(t)
	ctx := context.Background()
	email := "taken@example.com"

	repo.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1", Email: "ada@example.com"}, nil).Once()
	repo.On("GetByEmail", ctx, email).Return(&domain.User{ID: "u2"}, nil).Once()

	_, err := svc.UpdateProfile(ctx, "u1", ProfileInput{Email: &email})

	assert.True(t, apperrors.HasCode(err, apperrors.CodeUserExists))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
