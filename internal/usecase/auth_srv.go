package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"kalamkart/internal/data/entity"
	"kalamkart/internal/data/repository"
	"kalamkart/internal/dto/request"
	"kalamkart/internal/dto/response"
	"kalamkart/pkg/mailer"
	"kalamkart/pkg/oauth"
	"kalamkart/pkg/policy"
	"kalamkart/pkg/utils"

	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	AdminLogin(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	GoogleAuth(ctx context.Context, req *request.GoogleAuthRequest) (*response.AuthResponse, error)
	SendOTP(ctx context.Context, req *request.SendOTPRequest) error
	VerifyOTP(ctx context.Context, req *request.VerifyOTPRequest) (*response.AuthResponse, error)
	ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, token string, req *request.ResetPasswordRequest) error
}

type authService struct {
	repo   *repository.Repository
	config *utils.Config
	tokens *utils.TokenManager
	mailer mailer.Sender
	google oauth.Verifier
	now    clock
	log    *zap.Logger
}

func NewAuthService(repo *repository.Repository, config *utils.Config, deps Deps, log *zap.Logger) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		tokens: deps.Tokens,
		mailer: deps.Mailer,
		google: deps.Google,
		now:    time.Now,
		log:    log.With(zap.String("service", "auth")),
	}
}

// issue signs a token for user and builds the sign-in body
func (s *authService) issue(user *entity.User) (*response.AuthResponse, error) {
	token, _, err := s.tokens.Generate(user.ID.Hex(), user.Name, user.Email, user.Role)
	if err != nil {
		s.log.Error("Failed to sign token", zap.Error(err), zap.String("user_id", user.ID.Hex()))
		return nil, utils.ErrInternal("Failed to generate token", err)
	}

	resp := response.AuthToResponse(user, token)
	return &resp, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ==================== PASSWORD SIGN-IN ====================

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	// 1. Email must be free
	existing, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to check email", zap.Error(err), zap.String("email", email))
		return nil, utils.ErrInternal("Failed to register user", err)
	}
	if existing != nil {
		return nil, utils.ErrConflict("User already exists")
	}

	// 2. Hash password
	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, utils.ErrInternal("Failed to register user", err)
	}

	// 3. Save user
	user := &entity.User{
		Base:         entity.NewBase(s.now()),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hashed,
		Role:         string(policy.RoleUser),
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, utils.ErrConflict("User already exists")
		}
		s.log.Error("Failed to create user", zap.Error(err), zap.String("email", email))
		return nil, utils.ErrInternal("Failed to register user", err)
	}

	s.log.Info("User registered", zap.String("user_id", user.ID.Hex()), zap.String("email", email))
	return s.issue(user)
}

func (s *authService) authenticate(ctx context.Context, req *request.LoginRequest) (*entity.User, error) {
	email := normalizeEmail(req.Email)

	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to find user", zap.Error(err), zap.String("email", email))
		return nil, utils.ErrInternal("Failed to login", err)
	}
	if user == nil {
		return nil, utils.ErrNotFound("User not found")
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid login attempt", zap.String("email", email))
		return nil, utils.ErrUnauthorized("Invalid password")
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	user, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}

	s.log.Info("User logged in", zap.String("user_id", user.ID.Hex()))
	return s.issue(user)
}

func (s *authService) AdminLogin(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	user, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}

	if !user.IsAdmin() {
		s.log.Warn("Non-admin attempted admin login", zap.String("user_id", user.ID.Hex()))
		return nil, utils.ErrForbidden("Access denied: Admins only")
	}

	s.log.Info("Admin logged in", zap.String("user_id", user.ID.Hex()))
	return s.issue(user)
}

// ==================== FEDERATED SIGN-IN ====================

func (s *authService) GoogleAuth(ctx context.Context, req *request.GoogleAuthRequest) (*response.AuthResponse, error) {
	// 1. Verify ID token
	identity, err := s.google.Verify(ctx, req.Token)
	if err != nil {
		if errors.Is(err, oauth.ErrNotConfigured) {
			return nil, utils.ErrInternal("Google sign-in is not available", err)
		}
		s.log.Warn("Google token rejected", zap.Error(err))
		return nil, utils.ErrUnauthorized("Invalid Google token")
	}

	// 2. Find or create
	user, err := s.findOrCreate(ctx, normalizeEmail(identity.Email), identity.Name, true)
	if err != nil {
		return nil, err
	}

	s.log.Info("Google sign-in", zap.String("user_id", user.ID.Hex()))
	return s.issue(user)
}

// findOrCreate returns the user for email, creating one with an unusable password when missing.
func (s *authService) findOrCreate(ctx context.Context, email, name string, google bool) (*entity.User, error) {
	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, utils.ErrInternal("Failed to sign in", err)
	}
	if user != nil {
		return user, nil
	}

	// nobody knows this password; the account signs in through its provider
	hashed, err := utils.HashPassword(utils.GenerateUUIDString())
	if err != nil {
		return nil, utils.ErrInternal("Failed to sign in", err)
	}

	if name == "" {
		name = utils.EmailLocalPart(email)
	}

	user = &entity.User{
		Base:         entity.NewBase(s.now()),
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         string(policy.RoleUser),
		IsGoogleUser: google,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			// created concurrently
			existing, findErr := s.repo.User.FindByEmail(ctx, email)
			if findErr == nil && existing != nil {
				return existing, nil
			}
		}
		s.log.Error("Failed to create user", zap.Error(err), zap.String("email", email))
		return nil, utils.ErrInternal("Failed to sign in", err)
	}

	s.log.Info("User created on first sign-in", zap.String("user_id", user.ID.Hex()), zap.Bool("google", google))
	return user, nil
}

// ==================== OTP ====================

func (s *authService) otpMinutes() int {
	if s.config.OTP.ExpiryMinutes > 0 {
		return s.config.OTP.ExpiryMinutes
	}
	return 5
}

func (s *authService) SendOTP(ctx context.Context, req *request.SendOTPRequest) error {
	email := normalizeEmail(req.Email)
	now := s.now()
	minutes := s.otpMinutes()

	// 1. Replace any pending code
	otp := &entity.OTP{
		Base:      entity.NewBase(now),
		Email:     email,
		Code:      utils.GenerateOTP(s.config.OTP.Length),
		ExpiresAt: now.Add(time.Duration(minutes) * time.Minute),
	}
	if err := s.repo.OTP.Upsert(ctx, otp); err != nil {
		s.log.Error("Failed to save OTP", zap.Error(err), zap.String("email", email))
		return utils.ErrInternal("Failed to send OTP", err)
	}

	// 2. Deliver
	msg, err := mailer.OTPCode(email, otp.Code, minutes)
	if err != nil {
		return utils.ErrInternal("Failed to send OTP", err)
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Error("Failed to email OTP", zap.Error(err), zap.String("email", email))
		return utils.ErrInternal("Failed to send OTP", err)
	}

	s.log.Info("OTP sent", zap.String("email", email))
	return nil
}

func (s *authService) VerifyOTP(ctx context.Context, req *request.VerifyOTPRequest) (*response.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	// 1. Load pending code
	otp, err := s.repo.OTP.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to load OTP", zap.Error(err), zap.String("email", email))
		return nil, utils.ErrInternal("Failed to verify OTP", err)
	}
	if otp == nil {
		return nil, utils.ErrValidation("OTP not found")
	}

	// 2. Check
	if otp.Code != req.OTP {
		s.log.Warn("Invalid OTP", zap.String("email", email))
		return nil, utils.ErrValidation("Invalid OTP")
	}
	if otp.ExpiredAt(s.now()) {
		if err := s.repo.OTP.DeleteByEmail(ctx, email); err != nil {
			s.log.Warn("Failed to delete expired OTP", zap.Error(err), zap.String("email", email))
		}
		return nil, utils.ErrValidation("OTP expired")
	}

	// 3. Consume
	if err := s.repo.OTP.DeleteByEmail(ctx, email); err != nil {
		s.log.Error("Failed to delete OTP", zap.Error(err), zap.String("email", email))
		return nil, utils.ErrInternal("Failed to verify OTP", err)
	}

	// 4. Sign in
	user, err := s.findOrCreate(ctx, email, "", false)
	if err != nil {
		return nil, err
	}

	s.log.Info("OTP verified", zap.String("user_id", user.ID.Hex()))
	return s.issue(user)
}

// ==================== PASSWORD RESET ====================

func (s *authService) resetMinutes() int {
	if s.config.Reset.ExpiryMinutes > 0 {
		return s.config.Reset.ExpiryMinutes
	}
	return 15
}

func (s *authService) ForgotPassword(ctx context.Context, req *request.ForgotPasswordRequest) error {
	email := normalizeEmail(req.Email)

	// 1. Find user
	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return utils.ErrInternal("Failed to process request", err)
	}
	if user == nil {
		return utils.ErrNotFound("User not found")
	}

	// 2. Store token digest
	raw, hashed, err := utils.GenerateResetToken()
	if err != nil {
		s.log.Error("Failed to generate reset token", zap.Error(err))
		return utils.ErrInternal("Failed to process request", err)
	}

	minutes := s.resetMinutes()
	expires := s.now().Add(time.Duration(minutes) * time.Minute)
	user.ResetPasswordToken = hashed
	user.ResetPasswordExpire = &expires
	user.UpdatedAt = s.now()

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.log.Error("Failed to save reset token", zap.Error(err), zap.String("user_id", user.ID.Hex()))
		return utils.ErrInternal("Failed to process request", err)
	}

	// 3. Email the link; a token nobody received must not stay usable
	link := strings.TrimRight(s.config.App.FrontendURL, "/") + "/reset-password/" + raw
	msg, err := mailer.PasswordReset(user.Email, link, minutes)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		s.log.Error("Failed to email reset link", zap.Error(err), zap.String("user_id", user.ID.Hex()))

		user.ResetPasswordToken = ""
		user.ResetPasswordExpire = nil
		if clearErr := s.repo.User.Update(ctx, user); clearErr != nil {
			s.log.Error("Failed to clear reset token", zap.Error(clearErr), zap.String("user_id", user.ID.Hex()))
		}
		return utils.ErrInternal("Email could not be sent", err)
	}

	s.log.Info("Password reset requested", zap.String("user_id", user.ID.Hex()))
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token string, req *request.ResetPasswordRequest) error {
	// 1. Match digest with unexpired token
	user, err := s.repo.User.FindByResetToken(ctx, utils.HashToken(token), s.now())
	if err != nil {
		return utils.ErrInternal("Failed to reset password", err)
	}
	if user == nil {
		return utils.ErrValidation("Invalid or expired token")
	}

	// 2. Replace password, burn token
	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return utils.ErrInternal("Failed to reset password", err)
	}

	user.PasswordHash = hashed
	user.ResetPasswordToken = ""
	user.ResetPasswordExpire = nil
	user.UpdatedAt = s.now()

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.log.Error("Failed to reset password", zap.Error(err), zap.String("user_id", user.ID.Hex()))
		return utils.ErrInternal("Failed to reset password", err)
	}

	s.log.Info("Password reset", zap.String("user_id", user.ID.Hex()))
	return nil
}
