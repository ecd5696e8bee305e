// Package clubs provides database operations for clubs, their members and
// their reading lists.
//
// # Usage
//
//	repo := clubs.NewRepository(tx)
//	club, err := repo.Get("sci-fi", false)
package clubs

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/database"
	"github.com/mrlokans/bookclub/internal/entities"
	domainerrors "github.com/mrlokans/bookclub/internal/errors"
	"github.com/mrlokans/bookclub/internal/models"
)

// Repository handles all club database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new clubs repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a club and returns its handle. The owner, when given, must
// be a visible user.
func (r *Repository) Create(club models.NewClub) (string, error) {
	if err := database.CheckKeyAvailable(r.db, &entities.Club{}, club.Handle); err != nil {
		return "", err
	}

	record := entities.Club{
		Handle:      club.Handle,
		Description: club.Description,
	}
	if club.Owner != nil {
		owner, err := database.FindUser(r.db, *club.Owner)
		if err != nil {
			return "", err
		}
		record.OwnerID = &owner.ID
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&record).Error
	})
	if err != nil {
		return "", database.TranslateError(err)
	}
	return record.Handle, nil
}

// Update diffs club against the stored record. The owner is resolved again
// and compared like any other field; an absent owner leaves it unchanged, as
// does the "deleted" label while the stored owner is soft-deleted.
func (r *Repository) Update(handle string, club models.NewClub) (bool, error) {
	if club.Handle != handle {
		if err := database.CheckKeyAvailable(r.db, &entities.Club{}, club.Handle); err != nil {
			return false, err
		}
	}

	record, err := database.FindClub(r.db, handle)
	if err != nil {
		return false, err
	}

	changes := database.Changes{}
	database.Set(changes, "handle", record.Handle, club.Handle)
	database.SetOptional(changes, "description", record.Description, club.Description)
	if club.Owner != nil {
		keep, err := r.isDeletedOwner(record, *club.Owner)
		if err != nil {
			return false, err
		}
		if !keep {
			owner, err := database.FindUser(r.db, *club.Owner)
			if err != nil {
				return false, err
			}
			database.SetOptional(changes, "owner_id", record.OwnerID, &owner.ID)
		}
	}
	return changes.Apply(r.db, record)
}

// isDeletedOwner reports whether label is the sentinel Get renders for the
// club's current, soft-deleted owner.
func (r *Repository) isDeletedOwner(record *entities.Club, label string) (bool, error) {
	if label != models.ReservedKey || record.OwnerID == nil {
		return false, nil
	}
	var owner entities.User
	res := r.db.Limit(1).Find(&owner, *record.OwnerID)
	if res.Error != nil {
		return false, database.TranslateError(res.Error)
	}
	return res.RowsAffected > 0 && owner.Deleted, nil
}

// Get returns the club. A soft-deleted owner is shown as "deleted" unless
// revealOwner is set.
func (r *Repository) Get(handle string, revealOwner bool) (*models.Club, error) {
	record, err := database.FindClub(r.db, handle)
	if err != nil {
		return nil, err
	}

	if record.OwnerID != nil {
		var owner entities.User
		res := r.db.Limit(1).Find(&owner, *record.OwnerID)
		if res.Error != nil {
			return nil, database.TranslateError(res.Error)
		}
		if res.RowsAffected > 0 {
			record.Owner = &owner
		}
	}

	club := clubModel(record, revealOwner)
	return &club, nil
}

// List returns every visible club, applying the same owner rule as Get.
func (r *Repository) List() ([]models.Club, error) {
	var records []entities.Club
	err := r.db.Preload("Owner").Where("deleted = ?", false).Order("id").Find(&records).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}

	result := make([]models.Club, 0, len(records))
	for i := range records {
		result = append(result, clubModel(&records[i], false))
	}
	return result, nil
}

// Delete soft-deletes the club, or removes it together with its member and
// reading list links when hard is set.
func (r *Repository) Delete(handle string, hard bool) error {
	var opts []database.LookupOption
	if hard {
		opts = append(opts, database.IncludeDeleted())
	}

	record, err := database.FindClub(r.db, handle, opts...)
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

func clubModel(record *entities.Club, revealOwner bool) models.Club {
	return models.Club{
		Handle:      record.Handle,
		Owner:       database.OwnerLabel(record.Owner, revealOwner),
		Description: record.Description,
	}
}
