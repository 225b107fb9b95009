package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/TheZimbabwe/producto-transversal/api/auth"
	"github.com/TheZimbabwe/producto-transversal/config"
	"github.com/TheZimbabwe/producto-transversal/database"
)

const (
	sessionCookie = "producto_session"
	testPassword  = "password123"
)

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9]{32}$`)

type APITestSuite struct {
	suite.Suite
	server  *Server
	db      *database.Client
	ctx     context.Context
	cookies map[string]*http.Cookie
}

func (s *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := database.New(":memory:")
	s.Require().NoError(err)
	s.db = db
	s.ctx = context.Background()

	cfg := &config.Config{
		Listen:        ":0",
		SessionSecret: "test-secret",
		SessionMaxAge: 3600,
		Dev:           true,
		Database:      &config.DatabaseConfig{Path: ":memory:"},
	}
	server, err := New(cfg, db)
	s.Require().NoError(err)
	s.server = server

	s.cookies = make(map[string]*http.Cookie)
}

// do performs a request carrying the suite's cookie jar and stores any
// cookies the response sets.
func (s *APITestSuite) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.server.Engine().ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(s.cookies, c.Name)
			continue
		}
		s.cookies[c.Name] = c
	}
	return w
}

func (s *APITestSuite) register(username, email, password string) *httptest.ResponseRecorder {
	return s.do(http.MethodPost, "/register", url.Values{
		"username":         {username},
		"email":            {email},
		"password":         {password},
		"confirm_password": {password},
	})
}

func (s *APITestSuite) login(username, password string, rememberMe bool) *httptest.ResponseRecorder {
	form := url.Values{
		"username": {username},
		"password": {password},
	}
	if rememberMe {
		form.Set("remember_me", "on")
	}
	return s.do(http.MethodPost, "/login", form)
}

func (s *APITestSuite) userCount() int {
	users, err := s.db.GetAllUsers(s.ctx)
	s.Require().NoError(err)
	return len(users)
}

func (s *APITestSuite) TestIndex() {
	w := s.do(http.MethodGet, "/", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "Bienvenido")
}

func (s *APITestSuite) TestRegister_CollectsAllErrors() {
	w := s.do(http.MethodPost, "/register", url.Values{})
	s.Equal(http.StatusOK, w.Code)

	body := w.Body.String()
	s.Contains(body, "El nombre de usuario es obligatorio.")
	s.Contains(body, "El correo electrónico es obligatorio.")
	s.Contains(body, "La contraseña es obligatoria.")
	s.Equal(0, s.userCount())
}

func (s *APITestSuite) TestRegister_InvalidFields() {
	w := s.do(http.MethodPost, "/register", url.Values{
		"username":         {"a b"},
		"email":            {"not-an-email"},
		"password":         {"short"},
		"confirm_password": {"different"},
	})
	s.Equal(http.StatusOK, w.Code)

	body := w.Body.String()
	s.Contains(body, "solo puede contener letras")
	s.Contains(body, "correo electrónico válida")
	s.Contains(body, "al menos 8 caracteres")
	s.Contains(body, "Las contraseñas no coinciden.")
	s.Equal(0, s.userCount())
}

func (s *APITestSuite) TestRegister_Success() {
	w := s.register("alice", "alice@example.com", testPassword)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/login", w.Header().Get("Location"))
	s.Equal(1, s.userCount())

	user, err := s.db.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.NotEqual(testPassword, user.PasswordHash)
	s.True(auth.CheckPassword(user.PasswordHash, testPassword))
}

func (s *APITestSuite) TestRegister_DuplicateUsernameRejected() {
	s.register("alice", "alice@example.com", testPassword)

	w := s.register("alice", "other@example.com", testPassword)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "El nombre de usuario ya está en uso.")
	s.Equal(1, s.userCount())
}

func (s *APITestSuite) TestRegister_DuplicateEmailRejected() {
	s.register("alice", "alice@example.com", testPassword)

	w := s.register("bob", "alice@example.com", testPassword)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "ya está registrada")
	s.Equal(1, s.userCount())
}

func (s *APITestSuite) TestLogin_WrongPasswordIsGeneric() {
	s.register("alice", "alice@example.com", testPassword)

	w := s.login("alice", "wrongpass1", false)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "Nombre de usuario o contraseña inválidos.")

	// Unknown user gets the identical message.
	w = s.login("ghost", testPassword, false)
	s.Contains(w.Body.String(), "Nombre de usuario o contraseña inválidos.")

	// No session was established either way.
	w = s.do(http.MethodGet, "/dashboard", nil)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/login", w.Header().Get("Location"))
}

func (s *APITestSuite) TestLogin_MissingFields() {
	w := s.do(http.MethodPost, "/login", url.Values{})
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "Se requieren nombre de usuario y contraseña.")
}

func (s *APITestSuite) TestDashboard_RequiresSession() {
	w := s.do(http.MethodGet, "/dashboard", nil)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/login", w.Header().Get("Location"))

	// The warning flash shows up on the login page.
	w = s.do(http.MethodGet, "/login", nil)
	s.Contains(w.Body.String(), "Por favor, inicia sesión para acceder al panel principal.")
}

func (s *APITestSuite) TestDashboard_ListsAllUsers() {
	s.register("alice", "alice@example.com", testPassword)
	s.register("bob", "bob@example.com", testPassword)
	s.login("alice", testPassword, false)

	w := s.do(http.MethodGet, "/dashboard", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "alice")
	s.Contains(w.Body.String(), "bob")
}

func (s *APITestSuite) TestRememberMe_SetsCookies() {
	s.register("alice", "alice@example.com", testPassword)

	w := s.login("alice", testPassword, true)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/dashboard", w.Header().Get("Location"))

	tokenCookie := s.cookies[auth.CookieToken]
	s.Require().NotNil(tokenCookie)
	s.Regexp(tokenPattern, tokenCookie.Value)
	s.True(tokenCookie.HttpOnly)
	s.Equal(auth.RememberMaxAge, tokenCookie.MaxAge)

	userCookie := s.cookies[auth.CookieUser]
	s.Require().NotNil(userCookie)
	s.True(userCookie.HttpOnly)
}

func (s *APITestSuite) TestRememberMe_RoundTrip() {
	s.register("alice", "alice@example.com", testPassword)
	s.login("alice", testPassword, true)

	// Drop the session, keep only the two remember-me cookies.
	delete(s.cookies, sessionCookie)

	w := s.do(http.MethodGet, "/dashboard", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "alice")
}

func (s *APITestSuite) TestRememberMe_NoLoginWithoutRememberFlag() {
	s.register("alice", "alice@example.com", testPassword)
	s.login("alice", testPassword, false)

	s.Nil(s.cookies[auth.CookieToken])
	s.Nil(s.cookies[auth.CookieUser])

	delete(s.cookies, sessionCookie)
	w := s.do(http.MethodGet, "/dashboard", nil)
	s.Equal(http.StatusFound, w.Code)
}

func (s *APITestSuite) TestRememberMe_TamperedTokenRejected() {
	s.register("alice", "alice@example.com", testPassword)
	s.login("alice", testPassword, true)

	delete(s.cookies, sessionCookie)
	s.cookies[auth.CookieToken] = &http.Cookie{Name: auth.CookieToken, Value: "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"}

	w := s.do(http.MethodGet, "/dashboard", nil)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/login", w.Header().Get("Location"))
}

func (s *APITestSuite) TestLogout_Idempotent() {
	s.register("alice", "alice@example.com", testPassword)
	s.login("alice", testPassword, true)

	for i := 0; i < 2; i++ {
		w := s.do(http.MethodGet, "/logout", nil)
		s.Equal(http.StatusFound, w.Code)
		s.Equal("/login", w.Header().Get("Location"))

		s.Nil(s.cookies[auth.CookieToken])
		s.Nil(s.cookies[auth.CookieUser])

		dash := s.do(http.MethodGet, "/dashboard", nil)
		s.Equal(http.StatusFound, dash.Code)
		s.Equal("/login", dash.Header().Get("Location"))
	}
}

func (s *APITestSuite) TestProfile_UpdateFields() {
	s.register("alice", "alice@example.com", testPassword)
	s.login("alice", testPassword, false)

	w := s.do(http.MethodPost, "/profile", url.Values{
		"update_profile": {"1"},
		"full_name":      {"Alice Anderson"},
		"bio":            {"hola mundo"},
		"website":        {"alice.dev"},
	})
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/profile", w.Header().Get("Location"))

	user, err := s.db.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("Alice Anderson", user.FullName)
	s.Equal("hola mundo", user.Bio)
	// Missing scheme gets the secure default prepended.
	s.Equal("https://alice.dev", user.Website)

	w = s.do(http.MethodGet, "/profile", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "¡Perfil actualizado correctamente!")
	s.Contains(w.Body.String(), "Alice Anderson")
}

func (s *APITestSuite) TestProfile_WebsiteSchemeKept() {
	s.register("alice", "alice@example.com", testPassword)
	s.login("alice", testPassword, false)

	s.do(http.MethodPost, "/profile", url.Values{
		"update_profile": {"1"},
		"website":        {"http://alice.dev"},
	})

	user, err := s.db.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("http://alice.dev", user.Website)
}

func (s *APITestSuite) TestProfile_EmptyFieldsOverwrite() {
	s.register("alice", "alice@example.com", testPassword)
	s.login("alice", testPassword, false)

	s.do(http.MethodPost, "/profile", url.Values{
		"update_profile": {"1"},
		"full_name":      {"Alice Anderson"},
	})
	s.do(http.MethodPost, "/profile", url.Values{
		"update_profile": {"1"},
	})

	user, err := s.db.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Empty(user.FullName)
}

func (s *APITestSuite) TestProfile_ChangePasswordValidation() {
	s.register("alice", "alice@example.com", testPassword)
	s.login("alice", testPassword, false)

	w := s.do(http.MethodPost, "/profile", url.Values{
		"change_password":  {"1"},
		"current_password": {"wrongpass1"},
		"new_password":     {"short"},
		"confirm_password": {"different"},
	})
	s.Equal(http.StatusFound, w.Code)

	w = s.do(http.MethodGet, "/profile", nil)
	body := w.Body.String()
	s.Contains(body, "La contraseña actual es incorrecta.")
	s.Contains(body, "La nueva contraseña debe tener al menos 8 caracteres.")
	s.Contains(body, "Las nuevas contraseñas no coinciden.")

	// The stored password is untouched.
	user, err := s.db.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.True(auth.CheckPassword(user.PasswordHash, testPassword))
}

func (s *APITestSuite) TestScenario_RegisterLoginChangePassword() {
	// Register alice, redirected to login.
	w := s.register("alice", "alice@example.com", testPassword)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/login", w.Header().Get("Location"))

	// Login and see alice in the all-users list.
	w = s.login("alice", testPassword, false)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/dashboard", w.Header().Get("Location"))
	w = s.do(http.MethodGet, "/dashboard", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "alice")

	// Change the password via the profile.
	w = s.do(http.MethodPost, "/profile", url.Values{
		"change_password":  {"1"},
		"current_password": {testPassword},
		"new_password":     {"newpass123"},
		"confirm_password": {"newpass123"},
	})
	s.Equal(http.StatusFound, w.Code)

	// Logout, old password fails, new password succeeds.
	s.do(http.MethodGet, "/logout", nil)

	w = s.login("alice", testPassword, false)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "Nombre de usuario o contraseña inválidos.")

	w = s.login("alice", "newpass123", false)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/dashboard", w.Header().Get("Location"))
}

func (s *APITestSuite) TestAuthenticatedUserRedirectedFromLoginAndRegister() {
	s.register("alice", "alice@example.com", testPassword)
	s.login("alice", testPassword, false)

	for _, path := range []string{"/login", "/register"} {
		w := s.do(http.MethodGet, path, nil)
		s.Equal(http.StatusFound, w.Code)
		s.Equal("/dashboard", w.Header().Get("Location"))
	}
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
