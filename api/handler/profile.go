package handler

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/TheZimbabwe/producto-transversal/api/auth"
	"github.com/TheZimbabwe/producto-transversal/api/models"
)

const (
	msgProfileUpdated      = "¡Perfil actualizado correctamente!"
	msgCurrentPwdRequired  = "Se requiere la contraseña actual."
	msgCurrentPwdIncorrect = "La contraseña actual es incorrecta."
	msgNewPwdRequired      = "Se requiere una nueva contraseña."
	msgNewPwdLength        = "La nueva contraseña debe tener al menos 8 caracteres."
	msgNewPwdMismatch      = "Las nuevas contraseñas no coinciden."
	msgPasswordChanged     = "¡Contraseña cambiada correctamente!"
)

// ShowProfile renders the profile editor for the authenticated user.
func (h *Handler) ShowProfile(c *gin.Context) {
	user := c.MustGet("user").(*models.User)
	h.render(c, http.StatusOK, "profile.html", gin.H{
		"Title": "Mi perfil",
		"User":  user,
	})
}

// UpdateProfile dispatches between the two independent profile forms, keyed
// by which submit field is present.
func (h *Handler) UpdateProfile(c *gin.Context) {
	switch {
	case c.PostForm("update_profile") != "":
		h.updateProfileFields(c)
	case c.PostForm("change_password") != "":
		h.changePassword(c)
	default:
		c.Redirect(http.StatusFound, "/profile")
	}
}

func (h *Handler) updateProfileFields(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	fullName := strings.TrimSpace(c.PostForm("full_name"))
	bio := strings.TrimSpace(c.PostForm("bio"))
	website := strings.TrimSpace(c.PostForm("website"))

	if website != "" && !strings.HasPrefix(website, "http://") && !strings.HasPrefix(website, "https://") {
		website = "https://" + website
	}

	if err := h.db.UpdateProfile(c.Request.Context(), user.ID, fullName, bio, website); err != nil {
		log.Error("failed to update profile", "error", err, "user", user.Username)
		addFlash(c, "danger", msgStorageFailure)
		c.Redirect(http.StatusFound, "/profile")
		return
	}

	addFlash(c, "success", msgProfileUpdated)
	c.Redirect(http.StatusFound, "/profile")
}

func (h *Handler) changePassword(c *gin.Context) {
	sessionUser := c.MustGet("user").(*models.User)
	ctx := c.Request.Context()

	user, err := h.db.GetUserByID(ctx, sessionUser.ID)
	if err != nil {
		addFlash(c, "danger", msgStorageFailure)
		c.Redirect(http.StatusFound, "/profile")
		return
	}

	currentPassword := c.PostForm("current_password")
	newPassword := c.PostForm("new_password")
	confirmPassword := c.PostForm("confirm_password")

	var errs []string

	switch {
	case currentPassword == "":
		errs = append(errs, msgCurrentPwdRequired)
	case !auth.CheckPassword(user.PasswordHash, currentPassword):
		errs = append(errs, msgCurrentPwdIncorrect)
	}

	switch {
	case newPassword == "":
		errs = append(errs, msgNewPwdRequired)
	case len(newPassword) < 8:
		errs = append(errs, msgNewPwdLength)
	}

	if newPassword != confirmPassword {
		errs = append(errs, msgNewPwdMismatch)
	}

	if len(errs) > 0 {
		for _, msg := range errs {
			addFlash(c, "danger", msg)
		}
		c.Redirect(http.StatusFound, "/profile")
		return
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		addFlash(c, "danger", msgStorageFailure)
		c.Redirect(http.StatusFound, "/profile")
		return
	}

	if err := h.db.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		addFlash(c, "danger", msgStorageFailure)
		c.Redirect(http.StatusFound, "/profile")
		return
	}

	addFlash(c, "success", msgPasswordChanged)
	c.Redirect(http.StatusFound, "/profile")
}
