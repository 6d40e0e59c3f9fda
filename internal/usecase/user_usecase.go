package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/Sarbjeetmaan/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var _ domain.UserUseCase = (*userUseCase)(nil)

type TokenIssuer interface {
	Issue(identity domain.Identity) (string, error)
}

type userUseCase struct {
	userRepo    domain.UserRepository
	tokens      TokenIssuer
	adminEmails map[string]struct{}
	log         *logrus.Logger
}

// NewUserUseCase grants the ADMIN role to registrations whose email is listed in adminEmails.
func NewUserUseCase(repo domain.UserRepository, tokens TokenIssuer, adminEmails []string, logger *logrus.Logger) domain.UserUseCase {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			admins[email] = struct{}{}
		}
	}
	return &userUseCase{
		userRepo:    repo,
		tokens:      tokens,
		adminEmails: admins,
		log:         logger,
	}
}

func (uc *userUseCase) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	uc.log.Infof("Use Case: Attempting registration for email: %s", email)

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		uc.log.Warn("Use Case: Registration failed - empty name")
		return nil, fmt.Errorf("%w: user name cannot be empty", domain.ErrValidation)
	}
	if !isValidEmail(email) {
		uc.log.Warnf("Use Case: Registration failed - invalid email format: %s", email)
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrValidation)
	}
	if err := validatePassword(password); err != nil {
		uc.log.Warnf("Use Case: Registration failed - password validation error: %v", err)
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to hash password for %s: %v", email, err)
		return nil, fmt.Errorf("internal error processing password: %w", err)
	}

	role := domain.RoleUser
	if _, ok := uc.adminEmails[email]; ok {
		role = domain.RoleAdmin
	}

	newUser := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	if err := uc.userRepo.Create(ctx, newUser); err != nil {
		uc.log.Errorf("Use Case: Repository failed to create user %s: %v", email, err)
		return nil, err
	}

	uc.log.Infof("Use Case: User registered successfully. ID: %s, Email: %s, Role: %s", newUser.ID, newUser.Email, newUser.Role)
	return newUser, nil
}

func (uc *userUseCase) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	uc.log.Infof("Use Case: Attempting authentication for email: %s", email)

	if !isValidEmail(email) || password == "" {
		uc.log.Warnf("Use Case: Auth failed - invalid email or empty password for %s", email)
		return nil, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthenticated)
	}

	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warnf("Use Case: Auth failed - user not found: %s", email)
			return nil, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthenticated)
		}
		uc.log.Errorf("Use Case: Error retrieving user %s during auth: %v", email, err)
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			uc.log.Warnf("Use Case: Auth failed - incorrect password for user %s (ID: %s)", email, user.ID)
			return nil, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthenticated)
		}
		uc.log.Errorf("Use Case: Error comparing password hash for user %s: %v", email, err)
		return nil, fmt.Errorf("internal error during authentication: %w", err)
	}

	token, err := uc.tokens.Issue(user.Identity())
	if err != nil {
		uc.log.Errorf("Use Case: Failed to issue token for user %s: %v", email, err)
		return nil, fmt.Errorf("internal error during authentication: %w", err)
	}

	uc.log.Infof("Use Case: Authentication successful for user %s (ID: %s, Role: %s)", email, user.ID, user.Role)
	return &domain.AuthResult{Token: token, User: user}, nil
}

func (uc *userUseCase) Profile(ctx context.Context, caller domain.Identity) (*domain.User, error) {
	uc.log.Infof("Use Case: Attempting to get profile for %s", caller.Email)
	if caller.Email == "" {
		return nil, fmt.Errorf("%w: caller identity is missing", domain.ErrUnauthenticated)
	}

	user, err := uc.userRepo.GetByEmail(ctx, caller.Email)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get profile for %s: %v", caller.Email, err)
		return nil, err
	}
	return user, nil
}

// isValidEmail provides a basic check for email format.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	domainParts := strings.Split(parts[1], ".")
	return len(domainParts) >= 2 && domainParts[0] != "" && domainParts[len(domainParts)-1] != ""
}

// validatePassword enforces basic password complexity rules.
func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters long", domain.ErrValidation)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	if !hasUpper {
		return fmt.Errorf("%w: password must contain at least one uppercase letter", domain.ErrValidation)
	}
	if !hasLower {
		return fmt.Errorf("%w: password must contain at least one lowercase letter", domain.ErrValidation)
	}
	if !hasDigit {
		return fmt.Errorf("%w: password must contain at least one digit", domain.ErrValidation)
	}
	return nil
}
