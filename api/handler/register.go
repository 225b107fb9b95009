package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/TheZimbabwe/producto-transversal/api/auth"
	"github.com/TheZimbabwe/producto-transversal/database"
)

const (
	msgUsernameRequired = "El nombre de usuario es obligatorio."
	msgUsernameLength   = "El nombre de usuario debe tener entre 3 y 20 caracteres."
	msgUsernameCharset  = "El nombre de usuario solo puede contener letras, números y guiones bajos."
	msgUsernameTaken    = "El nombre de usuario ya está en uso. Por favor, elige otro."
	msgEmailRequired    = "El correo electrónico es obligatorio."
	msgEmailInvalid     = "Por favor, introduce una dirección de correo electrónico válida."
	msgEmailTaken       = "La dirección de correo electrónico ya está registrada. Por favor, usa otra."
	msgPasswordRequired = "La contraseña es obligatoria."
	msgPasswordLength   = "La contraseña debe tener al menos 8 caracteres."
	msgPasswordMismatch = "Las contraseñas no coinciden."
	msgRegisterSuccess  = "¡Registro exitoso! Ahora puedes iniciar sesión."
	msgStorageFailure   = "Ha ocurrido un error. Por favor, inténtalo de nuevo."
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ShowRegister renders the registration form. Authenticated users are sent
// straight to the dashboard.
func (h *Handler) ShowRegister(c *gin.Context) {
	if _, ok := auth.SessionUserID(c); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	h.render(c, http.StatusOK, "register.html", gin.H{
		"Title":    "Registro",
		"Username": "",
		"Email":    "",
	})
}

// Register validates the submitted form and creates the account. All
// violations are collected and rendered together; nothing is persisted
// unless every rule passes.
func (h *Handler) Register(c *gin.Context) {
	if _, ok := auth.SessionUserID(c); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	ctx := c.Request.Context()
	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	confirmPassword := c.PostForm("confirm_password")

	var errs []string

	switch {
	case username == "":
		errs = append(errs, msgUsernameRequired)
	case utf8.RuneCountInString(username) < 3 || utf8.RuneCountInString(username) > 20:
		errs = append(errs, msgUsernameLength)
	case !usernameRe.MatchString(username):
		errs = append(errs, msgUsernameCharset)
	default:
		if _, err := h.db.GetUserByUsername(ctx, username); err == nil {
			errs = append(errs, msgUsernameTaken)
		}
	}

	switch {
	case email == "":
		errs = append(errs, msgEmailRequired)
	case !strings.Contains(email, "@") || !strings.Contains(email, "."):
		errs = append(errs, msgEmailInvalid)
	default:
		if _, err := h.db.GetUserByEmail(ctx, email); err == nil {
			errs = append(errs, msgEmailTaken)
		}
	}

	switch {
	case password == "":
		errs = append(errs, msgPasswordRequired)
	case len(password) < 8:
		errs = append(errs, msgPasswordLength)
	}

	if password != confirmPassword {
		errs = append(errs, msgPasswordMismatch)
	}

	if len(errs) > 0 {
		h.renderRegisterErrors(c, username, email, errs)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", "error", err)
		h.renderRegisterErrors(c, username, email, []string{msgStorageFailure})
		return
	}

	user := &database.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := h.db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			// Lost the race against a concurrent registration; the unique
			// constraints are the real guarantee behind the pre-checks above.
			msg := msgEmailTaken
			if _, lookupErr := h.db.GetUserByUsername(ctx, username); lookupErr == nil {
				msg = msgUsernameTaken
			}
			h.renderRegisterErrors(c, username, email, []string{msg})
			return
		}
		h.renderRegisterErrors(c, username, email, []string{msgStorageFailure})
		return
	}

	addFlash(c, "success", msgRegisterSuccess)
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) renderRegisterErrors(c *gin.Context, username, email string, errs []string) {
	for _, msg := range errs {
		addFlash(c, "danger", msg)
	}
	h.render(c, http.StatusOK, "register.html", gin.H{
		"Title":    "Registro",
		"Username": username,
		"Email":    email,
	})
}
