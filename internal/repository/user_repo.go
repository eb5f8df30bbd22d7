package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"storefront/internal/domain"
)

type gormUserRepository struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewUserRepository(db *gorm.DB, logger *logrus.Logger) domain.UserRepository {
	return &gormUserRepository{
		db:  db,
		log: logger,
	}
}

func (r *gormUserRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			r.log.Warnf("Attempted to create user with duplicate username or email: %s", user.Username)
			return nil, domain.NewConflict("Username or email already registered")
		}
		r.log.Errorf("Failed to create user '%s': %v", user.Username, err)
		return nil, fmt.Errorf("could not create user: %w", err)
	}
	r.log.Infof("User created successfully with ID: %d", user.ID)
	return user, nil
}

func (r *gormUserRepository) GetUserByID(ctx context.Context, id int) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Preload("Addresses", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&user, id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, domain.NewNotFound("user", id)
		}
		r.log.Errorf("Failed to get user by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get user by id: %w", err)
	}
	return &user, nil
}

func (r *gormUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getBy(ctx, "username", strings.ToLower(strings.TrimSpace(username)))
}

func (r *gormUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

func (r *gormUserRepository) getBy(ctx context.Context, column, value string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where(column+" = ?", value).First(&user).Error
	if err != nil {
		if isNotFound(err) {
			return nil, domain.NewNotFound("user", nil)
		}
		r.log.Errorf("Failed to get user by %s: %v", column, err)
		return nil, fmt.Errorf("could not get user by %s: %w", column, err)
	}
	return &user, nil
}

func (r *gormUserRepository) UpdateUser(ctx context.Context, id int, updates map[string]interface{}) (*domain.User, error) {
	if len(updates) == 0 {
		return r.GetUserByID(ctx, id)
	}
	res := r.db.WithContext(ctx).Model(&domain.User{ID: id}).Updates(updates)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return nil, domain.NewConflict("Username or email already registered")
		}
		r.log.Errorf("Failed to update user ID %d: %v", id, res.Error)
		return nil, fmt.Errorf("could not update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.NewNotFound("user", id)
	}
	r.log.Infof("User ID %d updated", id)
	return r.GetUserByID(ctx, id)
}

// AddAddress stores the address. The first address of a user, or one added
// with setDefault, becomes the only default.
func (r *gormUserRepository) AddAddress(ctx context.Context, userID int, address *domain.Address, setDefault bool) (*domain.Address, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.NewNotFound("user", userID)
		}

		var existing int64
		if err := tx.Model(&domain.Address{}).Where("user_id = ?", userID).Count(&existing).Error; err != nil {
			return err
		}
		if setDefault && existing > 0 {
			if err := tx.Model(&domain.Address{}).Where("user_id = ?", userID).Update("is_default", false).Error; err != nil {
				return err
			}
		}

		address.UserID = userID
		address.IsDefault = setDefault || existing == 0
		return tx.Create(address).Error
	})
	if err != nil {
		r.log.Warnf("Failed to add address for user ID %d: %v", userID, err)
		return nil, err
	}
	r.log.Infof("Address %d added for user ID %d (default=%t)", address.ID, userID, address.IsDefault)
	return address, nil
}

func (r *gormUserRepository) ListAddresses(ctx context.Context, userID int) ([]domain.Address, error) {
	var addresses []domain.Address
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&addresses).Error; err != nil {
		return nil, fmt.Errorf("could not list addresses: %w", err)
	}
	return addresses, nil
}
