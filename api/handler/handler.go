// Package handler contains the page handlers of the web server. All
// user-facing messages are Spanish, carried as one-time flashes through the
// session store.
package handler

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/TheZimbabwe/producto-transversal/api/auth"
	"github.com/TheZimbabwe/producto-transversal/api/models"
	"github.com/TheZimbabwe/producto-transversal/database"
)

type Handler struct {
	db   *database.Client
	auth *auth.Service
}

func New(db *database.Client, authService *auth.Service) *Handler {
	return &Handler{
		db:   db,
		auth: authService,
	}
}

// render draws a page template, attaching pending flashes and the
// authenticated user when present.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Flashes"] = takeFlashes(c)
	if _, ok := data["User"]; !ok {
		if user, ok := c.Get("user"); ok {
			data["User"] = user
		}
	}
	c.HTML(status, name, data)
}

func addFlash(c *gin.Context, category, message string) {
	session := sessions.Default(c)
	session.AddFlash(models.Flash{Category: category, Message: message})
	if err := session.Save(); err != nil {
		log.Error("failed to save session", "error", err)
	}
}

func takeFlashes(c *gin.Context) []models.Flash {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) > 0 {
		if err := session.Save(); err != nil {
			log.Error("failed to save session", "error", err)
		}
	}
	flashes := make([]models.Flash, 0, len(raw))
	for _, f := range raw {
		if flash, ok := f.(models.Flash); ok {
			flashes = append(flashes, flash)
		}
	}
	return flashes
}

// Index renders the static landing page.
func (h *Handler) Index(c *gin.Context) {
	data := gin.H{"Title": "Inicio"}
	if username, ok := auth.SessionUsername(c); ok {
		data["User"] = &models.User{Username: username}
	}
	h.render(c, http.StatusOK, "index.html", data)
}

type dashboardUser struct {
	Username    string
	FullName    string
	Website     string
	MemberSince string
}

// Dashboard shows the current user and the full list of registered users.
func (h *Handler) Dashboard(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	allUsers, err := h.db.GetAllUsers(c.Request.Context())
	if err != nil {
		log.Error("failed to load users for dashboard", "error", err)
		allUsers = []database.User{}
	}

	users := lo.Map(allUsers, func(u database.User, _ int) dashboardUser {
		return dashboardUser{
			Username:    u.Username,
			FullName:    u.FullName,
			Website:     u.Website,
			MemberSince: u.CreatedAt.Format("02/01/2006"),
		}
	})

	h.render(c, http.StatusOK, "dashboard.html", gin.H{
		"Title": "Panel principal",
		"User":  user,
		"Users": users,
	})
}
