package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/bookclub/internal/database"
	"github.com/mrlokans/bookclub/internal/database/clubs"
	"github.com/mrlokans/bookclub/internal/entities"
	domainerrors "github.com/mrlokans/bookclub/internal/errors"
	"github.com/mrlokans/bookclub/internal/mason"
	"github.com/mrlokans/bookclub/internal/models"
)

const (
	entityClub       = "club"
	entityMembership = "club_member"
	entityListEntry  = "club_book"
)

type ClubsController struct {
	handler
}

func NewClubsController(db *database.Database, auditor Auditor) *ClubsController {
	return &ClubsController{handler: handler{db: db, auditor: auditor}}
}

// List returns all visible clubs.
// GET /clubs
func (cc *ClubsController) List(c *gin.Context) {
	items, err := inReadTx(c, cc.db, func(tx *gorm.DB) ([]models.Club, error) {
		return clubs.NewRepository(tx).List()
	})
	if err != nil {
		respondError(c, err)
		return
	}

	for i := range items {
		decorateClub(&items[i])
	}
	respondMason(c, http.StatusOK, collection(items, clubsPath, clubsPath))
}

// Create adds a club.
// POST /clubs
func (cc *ClubsController) Create(c *gin.Context) {
	var in models.NewClub
	if err := bindModel(c, &in); err != nil {
		respondError(c, err)
		return
	}

	handle, err := inTx(c, cc.db, func(tx *gorm.DB) (string, error) {
		return clubs.NewRepository(tx).Create(in)
	})
	cc.record(c, entities.AuditEventCreate, entityClub, in.Handle, err)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, clubPath(handle))
}

// Get returns one club. ?reveal_owner=true shows a soft-deleted owner's
// username instead of the "deleted" label.
// GET /clubs/:club
func (cc *ClubsController) Get(c *gin.Context) {
	reveal, err := boolQuery(c, "reveal_owner")
	if err != nil {
		respondError(c, err)
		return
	}

	club, err := inReadTx(c, cc.db, func(tx *gorm.DB) (*models.Club, error) {
		return clubs.NewRepository(tx).Get(c.Param("club"), reveal)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	decorateClub(club)
	if club.Owner != nil && usable(*club.Owner) {
		club.AddControl("bc:owner", mason.Control{Href: userPath(*club.Owner), Method: http.MethodGet})
	}
	addDocumentControls(&club.Hypermedia)
	respondMason(c, http.StatusOK, club)
}

// Edit creates or replaces a club.
// PUT /clubs/:club
func (cc *ClubsController) Edit(c *gin.Context) {
	var in models.NewClub
	if err := bindModel(c, &in); err != nil {
		respondError(c, err)
		return
	}

	key := c.Param("club")
	flow := editFlow[models.NewClub]{
		find: func(tx *gorm.DB, key string) error {
			_, err := database.FindClub(tx, key)
			return err
		},
		update: func(tx *gorm.DB, key string, m models.NewClub) (bool, error) {
			return clubs.NewRepository(tx).Update(key, m)
		},
		purge: func(tx *gorm.DB, key string) error {
			return clubs.NewRepository(tx).Delete(key, true)
		},
		create: func(tx *gorm.DB, m models.NewClub) error {
			_, err := clubs.NewRepository(tx).Create(m)
			return err
		},
	}

	status, err := flow.run(c, cc.db, key, in)
	cc.recordEdit(c, entityClub, key, status, err)
	if err != nil {
		respondError(c, err)
		return
	}
	respondEdit(c, status, clubPath(key))
}

// Delete soft-deletes a club, or removes it with ?hard=true.
// DELETE /clubs/:club
func (cc *ClubsController) Delete(c *gin.Context) {
	hard, err := boolQuery(c, "hard")
	if err != nil {
		respondError(c, err)
		return
	}

	key := c.Param("club")
	err = exec(c, cc.db, func(tx *gorm.DB) error {
		return clubs.NewRepository(tx).Delete(key, hard)
	})
	cc.record(c, deleteEvent(hard), entityClub, key, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Members lists the visible members of a club.
// GET /clubs/:club/members
func (cc *ClubsController) Members(c *gin.Context) {
	club := c.Param("club")
	items, err := inReadTx(c, cc.db, func(tx *gorm.DB) ([]models.User, error) {
		return clubs.NewRepository(tx).Members(club)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	for i := range items {
		decorateMember(&items[i], club)
	}
	out := collection(items, membersPath(club), "")
	out.AddControl("up", mason.Control{Href: clubPath(club), Method: http.MethodGet})
	respondMason(c, http.StatusOK, out)
}

// GetMember returns the member if the user belongs to the club.
// GET /clubs/:club/members/:user
func (cc *ClubsController) GetMember(c *gin.Context) {
	club, username := c.Param("club"), c.Param("user")
	members, err := inReadTx(c, cc.db, func(tx *gorm.DB) ([]models.User, error) {
		return clubs.NewRepository(tx).Members(club)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	for i := range members {
		if members[i].Username == username {
			member := members[i]
			decorateMember(&member, club)
			addDocumentControls(&member.Hypermedia)
			respondMason(c, http.StatusOK, member)
			return
		}
	}
	respondError(c, domainerrors.NotFoundf("User %s is not a member of %s", username, club))
}

// AddMember makes the user a member. 201 when added, 204 when the user
// already was one.
// PUT /clubs/:club/members/:user
func (cc *ClubsController) AddMember(c *gin.Context) {
	club, username := c.Param("club"), c.Param("user")
	added, err := inTx(c, cc.db, func(tx *gorm.DB) (bool, error) {
		return clubs.NewRepository(tx).AddMember(club, username)
	})
	if err != nil || added {
		cc.record(c, entities.AuditEventCreate, entityMembership, club+"/"+username, err)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if added {
		respondCreated(c, memberPath(club, username))
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveMember removes the user from the club.
// DELETE /clubs/:club/members/:user
func (cc *ClubsController) RemoveMember(c *gin.Context) {
	club, username := c.Param("club"), c.Param("user")
	err := exec(c, cc.db, func(tx *gorm.DB) error {
		return clubs.NewRepository(tx).RemoveMember(club, username)
	})
	cc.record(c, entities.AuditEventDelete, entityMembership, club+"/"+username, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Books lists the club's reading list.
// GET /clubs/:club/books
func (cc *ClubsController) Books(c *gin.Context) {
	club := c.Param("club")
	items, err := inReadTx(c, cc.db, func(tx *gorm.DB) ([]models.Book, error) {
		return clubs.NewRepository(tx).Books(club)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	for i := range items {
		href := readingListBookPath(club, items[i].Handle)
		items[i].AddControl("self", mason.Control{Href: bookPath(items[i].Handle), Method: http.MethodGet})
		items[i].AddControl("delete", mason.Control{Href: href, Method: http.MethodDelete})
	}
	out := collection(items, readingListPath(club), "")
	out.AddControl("up", mason.Control{Href: clubPath(club), Method: http.MethodGet})
	respondMason(c, http.StatusOK, out)
}

// AddBook puts the book on the reading list. 201 when added, 204 when it
// already was there.
// PUT /clubs/:club/books/:book
func (cc *ClubsController) AddBook(c *gin.Context) {
	club, handle := c.Param("club"), c.Param("book")
	added, err := inTx(c, cc.db, func(tx *gorm.DB) (bool, error) {
		return clubs.NewRepository(tx).AddBook(club, handle)
	})
	if err != nil || added {
		cc.record(c, entities.AuditEventCreate, entityListEntry, club+"/"+handle, err)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if added {
		respondCreated(c, readingListBookPath(club, handle))
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveBook takes the book off the reading list.
// DELETE /clubs/:club/books/:book
func (cc *ClubsController) RemoveBook(c *gin.Context) {
	club, handle := c.Param("club"), c.Param("book")
	err := exec(c, cc.db, func(tx *gorm.DB) error {
		return clubs.NewRepository(tx).RemoveBook(club, handle)
	})
	cc.record(c, entities.AuditEventDelete, entityListEntry, club+"/"+handle, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func decorateClub(club *models.Club) {
	addItemControls(&club.Hypermedia, clubPath(club.Handle))
	club.AddControl("bc:members", mason.Control{Href: membersPath(club.Handle), Method: http.MethodGet})
	club.AddControl("bc:reading-list", mason.Control{Href: readingListPath(club.Handle), Method: http.MethodGet})
}

func decorateMember(u *models.User, club string) {
	u.AddControl("self", mason.Control{Href: memberPath(club, u.Username), Method: http.MethodGet})
	u.AddControl("delete", mason.Control{Href: memberPath(club, u.Username), Method: http.MethodDelete})
	u.AddControl("profile", mason.Control{Href: userPath(u.Username), Method: http.MethodGet})
}
