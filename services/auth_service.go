package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vaibhavvyavahare/railtrace/logger"
	"github.com/vaibhavvyavahare/railtrace/models"
	"github.com/vaibhavvyavahare/railtrace/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	RoleVendor  = "vendor"
	RoleOfficer = "officer"
	RoleWorker  = "worker"
)

var rolePrefixes = map[string]string{
	"V-": RoleVendor,
	"O-": RoleOfficer,
	"W-": RoleWorker,
}

// RoleForUserID maps a prefixed user id to its role
func RoleForUserID(userID string) (string, bool) {
	if len(userID) < 2 {
		return "", false
	}
	role, ok := rolePrefixes[userID[:2]]
	return role, ok
}

// IsValidRole reports whether role is one of the three account kinds
func IsValidRole(role string) bool {
	return role == RoleVendor || role == RoleOfficer || role == RoleWorker
}

// HashPassword returns the bcrypt hash of a plaintext password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password with a stored bcrypt hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// LoginResult is a successful login
type LoginResult struct {
	UserType  string
	UserID    string
	Profile   map[string]interface{}
	Token     string
	ExpiresAt time.Time
}

// AuthService verifies credentials and provisions accounts
type AuthService struct {
	db      *gorm.DB
	tokens  *TokenIssuer
	limiter LoginLimiter
}

// NewAuthService creates an auth service; a nil limiter disables throttling
func NewAuthService(db *gorm.DB, tokens *TokenIssuer, limiter LoginLimiter) *AuthService {
	if limiter == nil {
		limiter = NoopLoginLimiter{}
	}
	return &AuthService{db: db, tokens: tokens, limiter: limiter}
}

// account is the part of a user row login needs
type account struct {
	hash    string
	profile map[string]interface{}
}

// Login routes the lookup to a single table by the id prefix. An unknown
// prefix and a missing row produce the same error.
func (s *AuthService) Login(ctx context.Context, userID, password string) (*LoginResult, error) {
	userID = strings.TrimSpace(userID)
	role, ok := RoleForUserID(userID)
	if !ok {
		return nil, ErrUserNotFound
	}

	allowed, err := s.limiter.Allow(ctx, userID)
	limiterWarn(ctx, err)
	if !allowed {
		return nil, ErrRateLimited
	}

	acct, err := s.lookup(ctx, role, userID)
	if err != nil {
		return nil, err
	}

	if !CheckPassword(acct.hash, password) {
		limiterWarn(ctx, s.limiter.RecordFailure(ctx, userID))
		logger.FromContext(ctx).Info().Str("user_id", userID).Msg("login rejected: invalid credentials")
		return nil, ErrInvalidCredentials
	}
	limiterWarn(ctx, s.limiter.Reset(ctx, userID))

	token, expiresAt, err := s.tokens.Mint(userID, role)
	if err != nil {
		return nil, utils.Internal("TOKEN_ERROR", "Failed to issue access token", err)
	}

	return &LoginResult{
		UserType:  role,
		UserID:    userID,
		Profile:   acct.profile,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *AuthService) lookup(ctx context.Context, role, userID string) (*account, error) {
	db := s.db.WithContext(ctx)

	var err error
	var acct account
	switch role {
	case RoleVendor:
		var v models.Vendor
		err = db.Where("vendor_id = ?", userID).First(&v).Error
		acct = account{hash: v.PasswordHash, profile: map[string]interface{}{
			"vendor_id":   v.VendorID,
			"vendor_name": v.VendorName,
			"email":       v.Email,
			"phone":       v.Phone,
			"address":     v.Address,
		}}
	case RoleOfficer:
		var o models.Officer
		err = db.Where("officer_id = ?", userID).First(&o).Error
		acct = account{hash: o.PasswordHash, profile: map[string]interface{}{
			"officer_id":   o.OfficerID,
			"officer_name": o.OfficerName,
			"email":        o.Email,
			"phone":        o.Phone,
			"designation":  o.Designation,
		}}
	case RoleWorker:
		var w models.Worker
		err = db.Where("worker_id = ?", userID).First(&w).Error
		acct = account{hash: w.PasswordHash, profile: map[string]interface{}{
			"worker_id":   w.WorkerID,
			"worker_name": w.WorkerName,
			"phone":       w.Phone,
		}}
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, dbError("Failed to look up user", err)
	}
	return &acct, nil
}

// RegisterVendorInput is the data needed to create a vendor account
type RegisterVendorInput struct {
	VendorID   string  `json:"vendor_id" binding:"required,startswith=V-"`
	VendorName string  `json:"vendor_name" binding:"required"`
	Password   string  `json:"password" binding:"required,min=8"`
	Email      *string `json:"email" binding:"omitempty,email"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
}

// RegisterVendor creates a vendor with a hashed password
func (s *AuthService) RegisterVendor(ctx context.Context, in RegisterVendorInput) (*models.Vendor, error) {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, utils.Internal("PASSWORD_HASH_ERROR", "Failed to secure password", err)
	}

	vendor := models.Vendor{
		VendorID:     in.VendorID,
		VendorName:   in.VendorName,
		PasswordHash: hash,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Address,
	}
	if err := s.create(ctx, &vendor); err != nil {
		return nil, err
	}
	return &vendor, nil
}

// CreateWorkerInput is the data needed to provision a worker account
type CreateWorkerInput struct {
	WorkerID   string  `json:"worker_id" binding:"required,startswith=W-"`
	WorkerName string  `json:"worker_name" binding:"required"`
	Password   string  `json:"password" binding:"required,min=8"`
	Phone      *string `json:"phone"`
}

// CreateWorker provisions a worker account
func (s *AuthService) CreateWorker(ctx context.Context, in CreateWorkerInput) (*models.Worker, error) {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, utils.Internal("PASSWORD_HASH_ERROR", "Failed to secure password", err)
	}

	worker := models.Worker{
		WorkerID:     in.WorkerID,
		WorkerName:   in.WorkerName,
		PasswordHash: hash,
		Phone:        in.Phone,
	}
	if err := s.create(ctx, &worker); err != nil {
		return nil, err
	}
	return &worker, nil
}

// CreateOfficerInput is the data needed to provision an officer account
type CreateOfficerInput struct {
	OfficerID   string  `json:"officer_id" binding:"required,startswith=O-"`
	OfficerName string  `json:"officer_name" binding:"required"`
	Password    string  `json:"password" binding:"required,min=8"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone"`
	Designation *string `json:"designation"`
}

// CreateOfficer provisions an officer account
func (s *AuthService) CreateOfficer(ctx context.Context, in CreateOfficerInput) (*models.Officer, error) {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, utils.Internal("PASSWORD_HASH_ERROR", "Failed to secure password", err)
	}

	officer := models.Officer{
		OfficerID:    in.OfficerID,
		OfficerName:  in.OfficerName,
		PasswordHash: hash,
		Email:        in.Email,
		Phone:        in.Phone,
		Designation:  in.Designation,
	}
	if err := s.create(ctx, &officer); err != nil {
		return nil, err
	}
	return &officer, nil
}

func (s *AuthService) create(ctx context.Context, value interface{}) error {
	if err := s.db.WithContext(ctx).Create(value).Error; err != nil {
		if utils.IsUniqueViolation(err) {
			return ErrUserExists
		}
		return dbError("Failed to create account", err)
	}
	return nil
}

// EnsureBootstrapOfficer creates the configured officer account if it does not exist yet
func (s *AuthService) EnsureBootstrapOfficer(ctx context.Context, officerID, name, password string) (bool, error) {
	if officerID == "" || password == "" {
		return false, nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Officer{}).Where("officer_id = ?", officerID).Count(&count).Error; err != nil {
		return false, dbError("Failed to check bootstrap officer", err)
	}
	if count > 0 {
		return false, nil
	}

	if _, err := s.CreateOfficer(ctx, CreateOfficerInput{
		OfficerID:   officerID,
		OfficerName: name,
		Password:    password,
	}); err != nil {
		return false, err
	}
	logger.FromContext(ctx).Info().Str("officer_id", officerID).Msg("bootstrap officer created")
	return true, nil
}
