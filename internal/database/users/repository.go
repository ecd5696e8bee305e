// Package users provides database operations for user management.
//
// # Usage
//
//	repo := users.NewRepository(tx)
//	username, err := repo.Create(models.NewUser{Username: "alice"})
package users

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/database"
	"github.com/mrlokans/bookclub/internal/entities"
	domainerrors "github.com/mrlokans/bookclub/internal/errors"
	"github.com/mrlokans/bookclub/internal/models"
)

// Repository handles all user database operations.
type Repository struct {
	db         *gorm.DB
	bcryptCost int
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, bcryptCost: bcrypt.DefaultCost}
}

// WithBcryptCost sets the cost used to hash passwords.
func (r *Repository) WithBcryptCost(cost int) *Repository {
	r.bcryptCost = cost
	return r
}

// Create inserts a user and returns the username.
func (r *Repository) Create(user models.NewUser) (string, error) {
	if err := r.checkAvailable(user.Username); err != nil {
		return "", err
	}

	record := entities.User{
		Username:    user.Username,
		Description: user.Description,
	}
	if user.Password != nil {
		hash, err := r.hash(*user.Password)
		if err != nil {
			return "", err
		}
		record.PasswordHash = &hash
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&record).Error
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return "", domainerrors.AlreadyExistsf("Username %s is taken", user.Username).WithCause(err)
		}
		return "", database.TranslateError(err)
	}
	return record.Username, nil
}

// Update diffs user against the stored record. A password counts as a change
// only when it does not match the stored hash.
func (r *Repository) Update(username string, user models.NewUser) (bool, error) {
	if user.Username != username {
		if err := r.checkAvailable(user.Username); err != nil {
			return false, err
		}
	}

	record, err := database.FindUser(r.db, username)
	if err != nil {
		return false, err
	}

	changes := database.Changes{}
	database.Set(changes, "username", record.Username, user.Username)
	database.SetOptional(changes, "description", record.Description, user.Description)
	if user.Password != nil && !r.matches(record.PasswordHash, *user.Password) {
		hash, err := r.hash(*user.Password)
		if err != nil {
			return false, err
		}
		changes["password_hash"] = hash
	}
	return changes.Apply(r.db, record)
}

func (r *Repository) Get(username string) (*models.User, error) {
	record, err := database.FindUser(r.db, username)
	if err != nil {
		return nil, err
	}
	user := database.UserModel(record)
	return &user, nil
}

// List returns every visible user ordered by creation.
func (r *Repository) List() ([]models.User, error) {
	var records []entities.User
	if err := r.db.Where("deleted = ?", false).Order("id").Find(&records).Error; err != nil {
		return nil, database.TranslateError(err)
	}

	result := make([]models.User, 0, len(records))
	for i := range records {
		result = append(result, database.UserModel(&records[i]))
	}
	return result, nil
}

// Delete soft-deletes the user, or removes the row when hard is set. Hard
// deletion drops the user's reading records and club memberships and
// detaches their reviews, comments and owned clubs.
func (r *Repository) Delete(username string, hard bool) error {
	var opts []database.LookupOption
	if hard {
		opts = append(opts, database.IncludeDeleted())
	}

	record, err := database.FindUser(r.db, username, opts...)
	if err != nil {
		if hard && errors.Is(err, domainerrors.ErrNotFound) {
			return nil
		}
		return err
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if hard {
			return tx.Delete(record).Error
		}
		return tx.Model(record).Update("deleted", true).Error
	})
	return database.TranslateError(err)
}

// CheckPassword reports whether password matches the user's stored hash.
func (r *Repository) CheckPassword(username, password string) (bool, error) {
	record, err := database.FindUser(r.db, username)
	if err != nil {
		return false, err
	}
	return r.matches(record.PasswordHash, password), nil
}

func (r *Repository) checkAvailable(username string) error {
	err := database.CheckKeyAvailable(r.db, &entities.User{}, username)
	if errors.Is(err, domainerrors.ErrAlreadyExists) {
		return domainerrors.AlreadyExistsf("Username %s is taken", username)
	}
	return err
}

func (r *Repository) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domainerrors.ValidationWithDetails("Document failed validation",
			map[string]string{"password": "must not exceed 72 bytes"})
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (r *Repository) matches(hash *string, password string) bool {
	if hash == nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*hash), []byte(password)) == nil
}
