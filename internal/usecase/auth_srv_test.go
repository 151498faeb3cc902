package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"kalamkart/internal/data/entity"
	"kalamkart/internal/data/repository"
	"kalamkart/internal/dto/request"
	"kalamkart/pkg/oauth"
	"kalamkart/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type authFixture struct {
	users  *MockUserRepository
	otps   *MockOTPRepository
	mail   *fakeSender
	google *fakeGoogle
	tokens *utils.TokenManager
	svc    *authService
	now    time.Time
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:  new(MockUserRepository),
		otps:   new(MockOTPRepository),
		mail:   &fakeSender{},
		google: &fakeGoogle{},
		tokens: utils.NewTokenManager("test-secret", time.Hour),
		now:    time.Date(2026, 5, 5, 12, 0, 0, 0, time.UTC),
	}

	repo := &repository.Repository{User: f.users, OTP: f.otps}
	config := &utils.Config{App: utils.AppConfig{FrontendURL: "http://shop.test/"}}
	deps := Deps{Tokens: f.tokens, Mailer: f.mail, Google: f.google}

	f.svc = NewAuthService(repo, config, deps, zap.NewNop()).(*authService)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := utils.HashPassword(password)
	require.NoError(t, err)
	return h
}

func TestRegister(t *testing.T) {
	t.Run("email taken", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", mock.Anything, "sita@example.com").Return(&entity.User{}, nil)

		_, err := f.svc.Register(context.Background(), &request.RegisterRequest{Name: "Sita", Email: "Sita@Example.com", Password: "secret1"})

		assert.True(t, utils.IsKind(err, utils.KindConflict))
		f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("created", func(t *testing.T) {
		f := newAuthFixture()
		var created *entity.User
		f.users.On("FindByEmail", mock.Anything, "sita@example.com").Return(nil, nil)
		f.users.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			created = args.Get(1).(*entity.User)
		}).Return(nil)

		resp, err := f.svc.Register(context.Background(), &request.RegisterRequest{Name: "Sita", Email: "sita@example.com", Password: "secret1"})

		require.NoError(t, err)
		assert.False(t, resp.IsAdmin)
		assert.Equal(t, "user", created.Role)
		assert.NotEqual(t, "secret1", created.PasswordHash)
		assert.True(t, utils.CheckPasswordHash("secret1", created.PasswordHash))

		claims, err := f.tokens.Parse(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, created.ID.Hex(), claims.UserID)
	})

	t.Run("concurrent duplicate", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", mock.Anything, "sita@example.com").Return(nil, nil)
		f.users.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateKey)

		_, err := f.svc.Register(context.Background(), &request.RegisterRequest{Name: "Sita", Email: "sita@example.com", Password: "secret1"})

		assert.True(t, utils.IsKind(err, utils.KindConflict))
	})
}

func TestLogin(t *testing.T) {
	user := &entity.User{Base: entity.Base{ID: primitive.NewObjectID()}, Email: "ram@example.com", Role: "user"}
	user.PasswordHash = hashed(t, "correct-horse")

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)

		_, err := f.svc.Login(context.Background(), &request.LoginRequest{Email: "nobody@example.com", Password: "x"})
		assert.True(t, utils.IsKind(err, utils.KindNotFound))
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)

		_, err := f.svc.Login(context.Background(), &request.LoginRequest{Email: user.Email, Password: "wrong"})
		assert.True(t, utils.IsKind(err, utils.KindUnauthorized))
	})

	t.Run("admin login as customer", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)

		_, err := f.svc.AdminLogin(context.Background(), &request.LoginRequest{Email: user.Email, Password: "correct-horse"})
		require.Error(t, err)
		assert.Equal(t, "Access denied: Admins only", utils.AsAppError(err).Message)
	})

	t.Run("success", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)

		resp, err := f.svc.Login(context.Background(), &request.LoginRequest{Email: user.Email, Password: "correct-horse"})
		require.NoError(t, err)
		assert.Equal(t, user.ID.Hex(), resp.ID)
		assert.NotEmpty(t, resp.Token)
	})
}

func TestGoogleAuth(t *testing.T) {
	t.Run("invalid token", func(t *testing.T) {
		f := newAuthFixture()
		f.google.err = oauth.ErrInvalidToken

		_, err := f.svc.GoogleAuth(context.Background(), &request.GoogleAuthRequest{Token: "bad"})
		assert.True(t, utils.IsKind(err, utils.KindUnauthorized))
	})

	t.Run("first sign-in creates user", func(t *testing.T) {
		f := newAuthFixture()
		f.google.identity = &oauth.Identity{Email: "gopal@example.com", Name: "Gopal"}

		var created *entity.User
		f.users.On("FindByEmail", mock.Anything, "gopal@example.com").Return(nil, nil)
		f.users.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			created = args.Get(1).(*entity.User)
		}).Return(nil)

		resp, err := f.svc.GoogleAuth(context.Background(), &request.GoogleAuthRequest{Token: "good"})

		require.NoError(t, err)
		assert.Equal(t, "Gopal", resp.Name)
		assert.True(t, created.IsGoogleUser)
		assert.NotEmpty(t, created.PasswordHash)
	})
}

func TestVerifyOTP(t *testing.T) {
	email := "otp@example.com"

	t.Run("not found", func(t *testing.T) {
		f := newAuthFixture()
		f.otps.On("FindByEmail", mock.Anything, email).Return(nil, nil)

		_, err := f.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{Email: email, OTP: "123456"})
		assert.Equal(t, "OTP not found", utils.AsAppError(err).Message)
	})

	t.Run("mismatch", func(t *testing.T) {
		f := newAuthFixture()
		f.otps.On("FindByEmail", mock.Anything, email).Return(&entity.OTP{Email: email, Code: "654321", ExpiresAt: f.now.Add(time.Minute)}, nil)

		_, err := f.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{Email: email, OTP: "123456"})
		assert.Equal(t, "Invalid OTP", utils.AsAppError(err).Message)
		f.otps.AssertNotCalled(t, "DeleteByEmail", mock.Anything, mock.Anything)
	})

	t.Run("expired", func(t *testing.T) {
		f := newAuthFixture()
		f.otps.On("FindByEmail", mock.Anything, email).Return(&entity.OTP{Email: email, Code: "123456", ExpiresAt: f.now.Add(-time.Second)}, nil)
		f.otps.On("DeleteByEmail", mock.Anything, email).Return(nil)

		_, err := f.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{Email: email, OTP: "123456"})
		assert.Equal(t, "OTP expired", utils.AsAppError(err).Message)
		f.otps.AssertCalled(t, "DeleteByEmail", mock.Anything, email)
	})

	t.Run("creates user from email", func(t *testing.T) {
		f := newAuthFixture()
		f.otps.On("FindByEmail", mock.Anything, email).Return(&entity.OTP{Email: email, Code: "123456", ExpiresAt: f.now.Add(time.Minute)}, nil)
		f.otps.On("DeleteByEmail", mock.Anything, email).Return(nil)
		f.users.On("FindByEmail", mock.Anything, email).Return(nil, nil)
		f.users.On("Create", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{Email: email, OTP: "123456"})

		require.NoError(t, err)
		assert.Equal(t, "otp", resp.Name)
	})
}

func TestSendOTP(t *testing.T) {
	f := newAuthFixture()
	var saved *entity.OTP
	f.otps.On("Upsert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*entity.OTP)
	}).Return(nil)

	err := f.svc.SendOTP(context.Background(), &request.SendOTPRequest{Email: "otp@example.com"})

	require.NoError(t, err)
	assert.Len(t, saved.Code, 6)
	assert.Equal(t, f.now.Add(5*time.Minute), saved.ExpiresAt)
	require.Len(t, f.mail.sent, 1)
	assert.Contains(t, f.mail.sent[0].HTML, saved.Code)
}

func TestForgotPassword(t *testing.T) {
	t.Run("email failure clears token", func(t *testing.T) {
		f := newAuthFixture()
		f.mail.err = errors.New("smtp down")
		user := &entity.User{Base: entity.Base{ID: primitive.NewObjectID()}, Email: "lost@example.com"}

		var tokens []string
		f.users.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
		f.users.On("Update", mock.Anything, user).Run(func(args mock.Arguments) {
			tokens = append(tokens, args.Get(1).(*entity.User).ResetPasswordToken)
		}).Return(nil)

		err := f.svc.ForgotPassword(context.Background(), &request.ForgotPasswordRequest{Email: user.Email})

		assert.True(t, utils.IsKind(err, utils.KindInternal))
		require.Len(t, tokens, 2)
		assert.NotEmpty(t, tokens[0])
		assert.Empty(t, tokens[1])
		assert.Nil(t, user.ResetPasswordExpire)
	})

	t.Run("sends link with raw token", func(t *testing.T) {
		f := newAuthFixture()
		user := &entity.User{Base: entity.Base{ID: primitive.NewObjectID()}, Email: "lost@example.com"}
		f.users.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
		f.users.On("Update", mock.Anything, user).Return(nil)

		require.NoError(t, f.svc.ForgotPassword(context.Background(), &request.ForgotPasswordRequest{Email: user.Email}))

		require.Len(t, f.mail.sent, 1)
		assert.Contains(t, f.mail.sent[0].HTML, "http://shop.test/reset-password/")
		assert.NotContains(t, f.mail.sent[0].HTML, user.ResetPasswordToken)
		assert.Equal(t, f.now.Add(15*time.Minute), *user.ResetPasswordExpire)
	})
}

func TestResetPassword(t *testing.T) {
	f := newAuthFixture()
	f.users.On("FindByResetToken", mock.Anything, utils.HashToken("stale"), f.now).Return(nil, nil)

	err := f.svc.ResetPassword(context.Background(), "stale", &request.ResetPasswordRequest{Password: "newpass"})
	assert.Equal(t, "Invalid or expired token", utils.AsAppError(err).Message)

	expires := f.now.Add(time.Minute)
	user := &entity.User{Base: entity.Base{ID: primitive.NewObjectID()}, ResetPasswordToken: utils.HashToken("fresh"), ResetPasswordExpire: &expires}
	f.users.On("FindByResetToken", mock.Anything, utils.HashToken("fresh"), f.now).Return(user, nil)
	f.users.On("Update", mock.Anything, user).Return(nil)

	require.NoError(t, f.svc.ResetPassword(context.Background(), "fresh", &request.ResetPasswordRequest{Password: "newpass"}))
	assert.Empty(t, user.ResetPasswordToken)
	assert.True(t, utils.CheckPasswordHash("newpass", user.PasswordHash))
}
