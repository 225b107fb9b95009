package handler

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/TheZimbabwe/producto-transversal/api/auth"
)

const (
	msgLoginRequired      = "Se requieren nombre de usuario y contraseña."
	msgLoginInvalid       = "Nombre de usuario o contraseña inválidos."
	msgLoginSuccess       = "¡Inicio de sesión exitoso!"
	msgLoginRemembered    = "¡Inicio de sesión exitoso! Tu sesión será recordada."
	msgLogoutSuccess      = "Has cerrado sesión exitosamente."
	msgSessionSaveFailure = "No se pudo iniciar la sesión. Por favor, inténtalo de nuevo."
)

// ShowLogin renders the login form. Authenticated users are sent straight to
// the dashboard.
func (h *Handler) ShowLogin(c *gin.Context) {
	if _, ok := auth.SessionUserID(c); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	h.render(c, http.StatusOK, "login.html", gin.H{"Title": "Iniciar sesión", "Username": ""})
}

// Login verifies the submitted credentials. Unknown usernames and wrong
// passwords get the same generic message.
func (h *Handler) Login(c *gin.Context) {
	if _, ok := auth.SessionUserID(c); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	_, rememberMe := c.GetPostForm("remember_me")

	if username == "" || password == "" {
		addFlash(c, "danger", msgLoginRequired)
		h.render(c, http.StatusOK, "login.html", gin.H{"Title": "Iniciar sesión", "Username": username})
		return
	}

	user, err := h.auth.AuthenticateByCredentials(c.Request.Context(), username, password)
	if err != nil {
		addFlash(c, "danger", msgLoginInvalid)
		h.render(c, http.StatusOK, "login.html", gin.H{"Title": "Iniciar sesión", "Username": username})
		return
	}

	if err := auth.LoginSession(c, user); err != nil {
		log.Error("failed to save session", "error", err)
		addFlash(c, "danger", msgSessionSaveFailure)
		h.render(c, http.StatusOK, "login.html", gin.H{"Title": "Iniciar sesión", "Username": username})
		return
	}

	if rememberMe {
		token, err := h.auth.IssueRememberToken(c.Request.Context(), user.ID)
		if err != nil {
			// The session login already succeeded; persistent login just
			// isn't available this time.
			log.Error("failed to issue remember token", "error", err)
			addFlash(c, "success", msgLoginSuccess)
			c.Redirect(http.StatusFound, "/dashboard")
			return
		}
		auth.SetRememberCookies(c, user.ID, token)
		addFlash(c, "success", msgLoginRemembered)
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	addFlash(c, "success", msgLoginSuccess)
	c.Redirect(http.StatusFound, "/dashboard")
}

// Logout clears the session and deletes both remember-me cookies whether or
// not they were set.
func (h *Handler) Logout(c *gin.Context) {
	auth.ClearRememberCookies(c)
	auth.ClearSession(c)
	addFlash(c, "success", msgLogoutSuccess)
	c.Redirect(http.StatusFound, "/login")
}
