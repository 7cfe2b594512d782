package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"okrproject/auth"
	"okrproject/errs"
	"okrproject/models"
	repository "okrproject/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context, p *models.Principal) error
	Me(ctx context.Context, p *models.Principal) (*models.User, error)
	UpdateProfile(ctx context.Context, p *models.Principal, req *models.UpdateProfileRequest) (*models.User, error)
	ChangePassword(ctx context.Context, p *models.Principal, req *models.ChangePasswordRequest) error
	UploadAvatar(ctx context.Context, p *models.Principal, filename string, data io.Reader, contentType string) (*models.User, error)
	OpenAvatar(ctx context.Context, userID primitive.ObjectID) (*repository.Avatar, error)
}

type authService struct {
	users   repository.UserRepository
	avatars repository.AvatarStore
	tokens  *auth.TokenManager
	revoker auth.Revoker
	log     *zap.Logger
}

func NewAuthService(users repository.UserRepository, avatars repository.AvatarStore, tokens *auth.TokenManager, revoker auth.Revoker, log *zap.Logger) AuthService {
	return &authService{
		users:   users,
		avatars: avatars,
		tokens:  tokens,
		revoker: revoker,
		log:     log,
	}
}

func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	if req.Role == models.RoleAdmin {
		return nil, errs.Validation("role", "Admin accounts are granted by an administrator")
	}
	if !models.ValidRole(req.Role) {
		return nil, errs.Validation("role", "unknown role %q", req.Role)
	}
	if !models.ValidDepartment(req.Department) {
		return nil, errs.Validation("department", "unknown department %q", req.Department)
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email %s is already registered: %w", repository.NormalizeEmail(req.Email), errs.ErrConflict)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         req.Role,
		Department:   req.Department,
		Designation:  strings.TrimSpace(req.Designation),
		IsActive:     true,
		CreatedAt:    now,
		LastLoginAt:  now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.Hex()), zap.String("role", user.Role))
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.CheckPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.Info("login rejected", zap.String("user_id", user.ID.Hex()))
		return nil, errs.ErrInvalidCredentials
	}

	user.LastLoginAt = time.Now()
	if err := s.users.TouchLastLogin(ctx, user.ID, user.LastLoginAt); err != nil {
		s.log.Warn("failed to record last login", zap.String("user_id", user.ID.Hex()), zap.Error(err))
	}
	return s.issue(user)
}

func (s *authService) issue(user *models.User) (*models.AuthResponse, error) {
	token, claims, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user,
	}, nil
}

func (s *authService) Logout(ctx context.Context, p *models.Principal) error {
	if p == nil || p.TokenID == "" {
		return errs.ErrUnauthorized
	}
	ttl := time.Until(p.TokenExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, p.TokenID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.log.Info("user logged out", zap.String("user_id", p.ID.Hex()))
	return nil
}

func (s *authService) Me(ctx context.Context, p *models.Principal) (*models.User, error) {
	if p == nil {
		return nil, errs.ErrUnauthorized
	}
	return s.users.GetByID(ctx, p.ID)
}

func (s *authService) UpdateProfile(ctx context.Context, p *models.Principal, req *models.UpdateProfileRequest) (*models.User, error) {
	if p == nil {
		return nil, errs.ErrUnauthorized
	}
	user, err := s.users.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		user.Name = name
	}
	if req.Email != "" {
		email := repository.NormalizeEmail(req.Email)
		if email != user.Email {
			other, err := s.users.GetByEmail(ctx, email)
			if err == nil && other.ID != user.ID {
				return nil, fmt.Errorf("email %s is already registered: %w", email, errs.ErrConflict)
			}
			if err != nil && !errors.Is(err, errs.ErrNotFound) {
				return nil, err
			}
			user.Email = email
		}
	}
	if req.Department != "" {
		if !models.ValidDepartment(req.Department) {
			return nil, errs.Validation("department", "unknown department %q", req.Department)
		}
		user.Department = req.Department
	}
	if designation := strings.TrimSpace(req.Designation); designation != "" {
		user.Designation = designation
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, p *models.Principal, req *models.ChangePasswordRequest) error {
	if p == nil {
		return errs.ErrUnauthorized
	}
	user, err := s.users.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}

	ok, err := auth.CheckPassword(user.PasswordHash, req.CurrentPassword)
	if err != nil {
		return err
	}
	if !ok {
		return errs.Validation("current_password", "current password is incorrect")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.log.Info("password changed", zap.String("user_id", user.ID.Hex()))
	return nil
}

func (s *authService) UploadAvatar(ctx context.Context, p *models.Principal, filename string, data io.Reader, contentType string) (*models.User, error) {
	if p == nil {
		return nil, errs.ErrUnauthorized
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, errs.Validation("avatar", "avatar must be an image")
	}

	user, err := s.users.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	fileID, err := s.avatars.Upload(ctx, filename, data, contentType, user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.users.SetAvatar(ctx, user.ID, fileID); err != nil {
		// the user no longer references the upload, drop it
		if cleanupErr := s.avatars.Delete(context.Background(), fileID); cleanupErr != nil {
			s.log.Warn("failed to clean up avatar", zap.String("file_id", fileID.Hex()), zap.Error(cleanupErr))
		}
		return nil, fmt.Errorf("failed to attach avatar: %w", err)
	}

	previous := user.AvatarID
	user.AvatarID = &fileID
	if previous != nil {
		if err := s.avatars.Delete(ctx, *previous); err != nil && !errors.Is(err, errs.ErrNotFound) {
			s.log.Warn("failed to delete previous avatar", zap.String("file_id", previous.Hex()), zap.Error(err))
		}
	}

	s.log.Info("avatar uploaded", zap.String("user_id", user.ID.Hex()), zap.String("file_id", fileID.Hex()))
	return user, nil
}

func (s *authService) OpenAvatar(ctx context.Context, userID primitive.ObjectID) (*repository.Avatar, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.AvatarID == nil {
		return nil, fmt.Errorf("user %s has no avatar: %w", userID.Hex(), errs.ErrNotFound)
	}
	return s.avatars.Open(ctx, *user.AvatarID)
}
