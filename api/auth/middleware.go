package auth

import (
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/TheZimbabwe/producto-transversal/api/models"
	"github.com/TheZimbabwe/producto-transversal/database"
)

const (
	sessionUserID   = "user_id"
	sessionUsername = "username"

	// CookieToken and CookieUser carry the remember-me credential pair.
	CookieToken = "remember_token"
	CookieUser  = "remember_user"

	// RememberMaxAge is the lifetime of the remember-me cookies in seconds.
	RememberMaxAge = 30 * 24 * 60 * 60
)

// LoginSession binds the user to the current session.
func LoginSession(c *gin.Context, user *database.User) error {
	session := sessions.Default(c)
	session.Set(sessionUserID, user.ID)
	session.Set(sessionUsername, user.Username)
	return session.Save()
}

// SessionUserID returns the authenticated user's ID, if any.
func SessionUserID(c *gin.Context) (uint, bool) {
	session := sessions.Default(c)
	id, ok := session.Get(sessionUserID).(uint)
	return id, ok
}

// ClearSession drops everything bound to the current session.
func ClearSession(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
}

// SessionUsername returns the authenticated user's username, if any.
func SessionUsername(c *gin.Context) (string, bool) {
	session := sessions.Default(c)
	username, ok := session.Get(sessionUsername).(string)
	return username, ok
}

// SetRememberCookies sets the two long-lived remember-me cookies. Both are
// HttpOnly so page scripts can never read the credential pair.
func SetRememberCookies(c *gin.Context, userID uint, token string) {
	c.SetCookie(CookieToken, token, RememberMaxAge, "/", "", false, true)
	c.SetCookie(CookieUser, strconv.FormatUint(uint64(userID), 10), RememberMaxAge, "/", "", false, true)
}

// ClearRememberCookies deletes both remember-me cookies, whether or not they
// were set.
func ClearRememberCookies(c *gin.Context) {
	c.SetCookie(CookieToken, "", -1, "/", "", false, true)
	c.SetCookie(CookieUser, "", -1, "/", "", false, true)
}

// RememberMe re-establishes a session from the remember-me cookies. It runs
// before every request and is the only implicit authentication path.
func (s *Service) RememberMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(sessionUserID) != nil {
			c.Next()
			return
		}

		token, err := c.Cookie(CookieToken)
		if err != nil || token == "" {
			c.Next()
			return
		}
		rawID, err := c.Cookie(CookieUser)
		if err != nil || rawID == "" {
			c.Next()
			return
		}
		userID, err := strconv.ParseUint(rawID, 10, 0)
		if err != nil {
			c.Next()
			return
		}

		user, err := s.AuthenticateByToken(c.Request.Context(), uint(userID), token)
		if err != nil {
			// No match leaves the request unauthenticated.
			c.Next()
			return
		}

		session.Set(sessionUserID, user.ID)
		session.Set(sessionUsername, user.Username)
		_ = session.Save()
		c.Next()
	}
}

// RequireAuth guards a route group. Unauthenticated requests are redirected
// to the login page with the given warning flash.
func (s *Service) RequireAuth(warning string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := SessionUserID(c)
		if !ok {
			session := sessions.Default(c)
			session.AddFlash(models.Flash{Category: "warning", Message: warning})
			_ = session.Save()
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		user, err := s.db.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			// Stale session pointing at a missing record.
			session := sessions.Default(c)
			session.Clear()
			_ = session.Save()
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set("user", &models.User{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			FullName: user.FullName,
			Bio:      user.Bio,
			Website:  user.Website,
		})
		c.Next()
	}
}
