package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/database"
	"github.com/mrlokans/bookclub/internal/database/users"
	"github.com/mrlokans/bookclub/internal/entities"
	"github.com/mrlokans/bookclub/internal/mason"
	"github.com/mrlokans/bookclub/internal/models"
)

const entityUser = "user"

type UsersController struct {
	handler
	bcryptCost int
}

func NewUsersController(db *database.Database, auditor Auditor, bcryptCost int) *UsersController {
	return &UsersController{handler: handler{db: db, auditor: auditor}, bcryptCost: bcryptCost}
}

func (uc *UsersController) repo(tx *gorm.DB) *users.Repository {
	repo := users.NewRepository(tx)
	if uc.bcryptCost > 0 {
		repo.WithBcryptCost(uc.bcryptCost)
	}
	return repo
}

// List returns all visible users.
// GET /users
func (uc *UsersController) List(c *gin.Context) {
	items, err := inReadTx(c, uc.db, func(tx *gorm.DB) ([]models.User, error) {
		return uc.repo(tx).List()
	})
	if err != nil {
		respondError(c, err)
		return
	}

	for i := range items {
		decorateUser(&items[i])
	}
	respondMason(c, http.StatusOK, collection(items, usersPath, usersPath))
}

// Create adds a user.
// POST /users
func (uc *UsersController) Create(c *gin.Context) {
	var in models.NewUser
	if err := bindModel(c, &in); err != nil {
		respondError(c, err)
		return
	}

	username, err := inTx(c, uc.db, func(tx *gorm.DB) (string, error) {
		return uc.repo(tx).Create(in)
	})
	uc.record(c, entities.AuditEventCreate, entityUser, in.Username, err)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, userPath(username))
}

// Get returns one user.
// GET /users/:user
func (uc *UsersController) Get(c *gin.Context) {
	user, err := inReadTx(c, uc.db, func(tx *gorm.DB) (*models.User, error) {
		return uc.repo(tx).Get(c.Param("user"))
	})
	if err != nil {
		respondError(c, err)
		return
	}

	decorateUser(user)
	addDocumentControls(&user.Hypermedia)
	respondMason(c, http.StatusOK, user)
}

// Edit creates or replaces a user.
// PUT /users/:user
func (uc *UsersController) Edit(c *gin.Context) {
	var in models.NewUser
	if err := bindModel(c, &in); err != nil {
		respondError(c, err)
		return
	}

	key := c.Param("user")
	flow := editFlow[models.NewUser]{
		find: func(tx *gorm.DB, key string) error {
			_, err := uc.repo(tx).Get(key)
			return err
		},
		update: func(tx *gorm.DB, key string, m models.NewUser) (bool, error) {
			return uc.repo(tx).Update(key, m)
		},
		purge: func(tx *gorm.DB, key string) error {
			return uc.repo(tx).Delete(key, true)
		},
		create: func(tx *gorm.DB, m models.NewUser) error {
			_, err := uc.repo(tx).Create(m)
			return err
		},
	}

	status, err := flow.run(c, uc.db, key, in)
	uc.recordEdit(c, entityUser, key, status, err)
	if err != nil {
		respondError(c, err)
		return
	}
	respondEdit(c, status, userPath(key))
}

// Delete soft-deletes a user, or removes it with ?hard=true.
// DELETE /users/:user
func (uc *UsersController) Delete(c *gin.Context) {
	hard, err := boolQuery(c, "hard")
	if err != nil {
		respondError(c, err)
		return
	}

	key := c.Param("user")
	err = exec(c, uc.db, func(tx *gorm.DB) error {
		return uc.repo(tx).Delete(key, hard)
	})
	uc.record(c, deleteEvent(hard), entityUser, key, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func decorateUser(u *models.User) {
	addItemControls(&u.Hypermedia, userPath(u.Username))
	u.AddControl("bc:books", mason.Control{Href: userBooksPath(u.Username), Method: http.MethodGet})
}
