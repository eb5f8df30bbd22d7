package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
	"storefront/internal/validation"
)

var _ domain.UserUseCase = (*userUseCase)(nil)

type userUseCase struct {
	userRepo domain.UserRepository
	log      *logrus.Logger
	cost     int
}

func NewUserUseCase(repo domain.UserRepository, logger *logrus.Logger) domain.UserUseCase {
	return &userUseCase{
		userRepo: repo,
		log:      logger,
		cost:     bcrypt.DefaultCost,
	}
}

// RegisterUser hashes the password and stores a new, active user.
func (uc *userUseCase) RegisterUser(ctx context.Context, in domain.UserCreate) (*domain.User, error) {
	uc.log.Infof("Use Case: Attempting registration for username: %s", in.Username)

	if problem := validation.PasswordProblem(in.Password); problem != "" {
		uc.log.Warnf("Use Case: Registration failed - password validation error: %s", problem)
		return nil, domain.NewFieldValidation("password", problem)
	}

	hash, err := uc.hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	user.Normalize()

	created, err := uc.userRepo.CreateUser(ctx, user)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create user %s: %v", user.Username, err)
		return nil, err
	}
	uc.log.Infof("Use Case: User registered successfully. ID: %d, Username: %s", created.ID, created.Username)
	return created, nil
}

// Authenticate checks username and password. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (uc *userUseCase) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	uc.log.Infof("Use Case: Attempting authentication for username: %s", username)

	user, err := uc.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			uc.log.Warnf("Use Case: Auth failed - user not found: %s", username)
			return nil, domain.ErrInvalidCredentials
		}
		uc.log.Errorf("Use Case: Error retrieving user %s during auth: %v", username, err)
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			uc.log.Warnf("Use Case: Auth failed - incorrect password for user %s (ID: %d)", username, user.ID)
			return nil, domain.ErrInvalidCredentials
		}
		uc.log.Errorf("Use Case: Error comparing password hash for user %s: %v", username, err)
		return nil, fmt.Errorf("internal error during authentication: %w", err)
	}

	if !user.IsActive {
		uc.log.Warnf("Use Case: Auth failed - inactive account %s (ID: %d)", username, user.ID)
		return nil, domain.ErrInactiveAccount
	}

	uc.log.Infof("Use Case: Authentication successful for user %s (ID: %d)", username, user.ID)
	return user, nil
}

func (uc *userUseCase) GetUser(ctx context.Context, id int) (*domain.User, error) {
	if id <= 0 {
		uc.log.Warnf("Use Case: Get user failed - invalid user ID: %d", id)
		return nil, &domain.InvalidIDError{Resource: "user", Value: fmt.Sprint(id)}
	}
	return uc.userRepo.GetUserByID(ctx, id)
}

func (uc *userUseCase) GetProfile(ctx context.Context, actor *domain.User, id int) (*domain.User, error) {
	if err := selfOrAdmin(actor, id); err != nil {
		uc.log.Warnf("Use Case: User %s denied access to profile %d", actorLabel(actor), id)
		return nil, err
	}
	return uc.GetUser(ctx, id)
}

func (uc *userUseCase) UpdateUser(ctx context.Context, actor *domain.User, id int, in domain.UserUpdate) (*domain.User, error) {
	if err := selfOrAdmin(actor, id); err != nil {
		uc.log.Warnf("Use Case: User %s denied update of user %d", actorLabel(actor), id)
		return nil, err
	}
	cols := in.Columns()
	if len(cols) == 0 {
		return nil, domain.NewValidation("At least one field must be provided for update")
	}
	uc.log.Infof("Use Case: Updating user ID %d (%d fields)", id, len(cols))
	return uc.userRepo.UpdateUser(ctx, id, cols)
}

func (uc *userUseCase) ChangeRole(ctx context.Context, id int, role domain.Role) (*domain.User, error) {
	if !domain.IsValidRole(role) {
		return nil, domain.NewFieldValidation("role", fmt.Sprintf("invalid role '%s'", role))
	}
	uc.log.Infof("Use Case: Changing role of user ID %d to %s", id, role)
	return uc.userRepo.UpdateUser(ctx, id, map[string]interface{}{"role": role})
}

func (uc *userUseCase) AddAddress(ctx context.Context, actor *domain.User, userID int, in domain.AddressCreate, setDefault bool) (*domain.Address, error) {
	if err := selfOrAdmin(actor, userID); err != nil {
		uc.log.Warnf("Use Case: User %s denied adding an address for user %d", actorLabel(actor), userID)
		return nil, err
	}
	return uc.userRepo.AddAddress(ctx, userID, in.ToAddress(), setDefault)
}

func (uc *userUseCase) ChangePassword(ctx context.Context, user *domain.User, in domain.PasswordReset) error {
	uc.log.Infof("Use Case: Password change requested for user ID %d", user.ID)

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		uc.log.Warnf("Use Case: Password change rejected for user ID %d - wrong current password", user.ID)
		return domain.NewFieldValidation("current_password", "Current password is incorrect")
	}
	if in.NewPassword != in.ConfirmPassword {
		return domain.NewFieldValidation("confirm_password", "Passwords do not match")
	}
	if in.NewPassword == in.CurrentPassword {
		return domain.NewFieldValidation("new_password", "New password must differ from the current password")
	}
	if problem := validation.PasswordProblem(in.NewPassword); problem != "" {
		return domain.NewFieldValidation("new_password", problem)
	}

	hash, err := uc.hash(in.NewPassword)
	if err != nil {
		return err
	}
	if _, err := uc.userRepo.UpdateUser(ctx, user.ID, map[string]interface{}{"password_hash": hash}); err != nil {
		uc.log.Errorf("Use Case: Failed to store new password for user ID %d: %v", user.ID, err)
		return err
	}
	uc.log.Infof("Use Case: Password changed for user ID %d", user.ID)
	return nil
}

// EnsureAdmin creates the bootstrap admin account, or promotes an existing
// user with that username. Empty credentials disable bootstrapping.
func (uc *userUseCase) EnsureAdmin(ctx context.Context, username, email, password string) (*domain.User, error) {
	if username == "" || email == "" || password == "" {
		uc.log.Info("Use Case: Admin bootstrap skipped, credentials not configured")
		return nil, nil
	}

	existing, err := uc.userRepo.GetUserByUsername(ctx, username)
	if err == nil {
		if existing.Role == domain.RoleAdmin {
			return existing, nil
		}
		uc.log.Infof("Use Case: Promoting existing user %s to admin", existing.Username)
		return uc.userRepo.UpdateUser(ctx, existing.ID, map[string]interface{}{"role": domain.RoleAdmin})
	}
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		return nil, err
	}

	hash, err := uc.hash(password)
	if err != nil {
		return nil, err
	}
	admin := &domain.User{
		Username:     username,
		Email:        email,
		FullName:     "Administrator",
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		IsActive:     true,
	}
	admin.Normalize()
	created, err := uc.userRepo.CreateUser(ctx, admin)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to create admin %s: %v", username, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Admin account %s created with ID %d", created.Username, created.ID)
	return created, nil
}

func (uc *userUseCase) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), uc.cost)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to hash password: %v", err)
		return "", fmt.Errorf("internal error processing password: %w", err)
	}
	return string(hashed), nil
}

func selfOrAdmin(actor *domain.User, id int) error {
	if actor == nil || (actor.ID != id && actor.Role != domain.RoleAdmin) {
		return domain.NewForbidden("Not authorized to access this user")
	}
	return nil
}

func actorLabel(actor *domain.User) string {
	if actor == nil {
		return "anonymous"
	}
	return strconv.Itoa(actor.ID)
}
