package server_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-chat-gate/auth"
	"github.com/jrsteele09/go-chat-gate/internal/config"
	"github.com/jrsteele09/go-chat-gate/server"
	"github.com/jrsteele09/go-chat-gate/sessions"
	fakesessionrepo "github.com/jrsteele09/go-chat-gate/sessions/repofakes"
	"github.com/jrsteele09/go-chat-gate/users"
	fakeuserrepo "github.com/jrsteele09/go-chat-gate/users/repofake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type serverFixture struct {
	userRepo *fakeuserrepo.FakeUserRepo
	ts       *httptest.Server
}

type serverOptions struct {
	authenticator server.Authenticator
	options       []server.Option
}

func setupServer(t *testing.T, opts ...func(*serverOptions)) *serverFixture {
	t.Helper()

	userRepo := fakeuserrepo.NewFakeUserRepo()
	authService, err := auth.NewService(userRepo, users.NewBcryptHasher(bcrypt.MinCost))
	require.NoError(t, err)

	store, err := sessions.NewStore(fakesessionrepo.NewFakeSessionRepo(), userRepo, 30*time.Minute)
	require.NoError(t, err)

	so := &serverOptions{authenticator: authService}
	for _, opt := range opts {
		opt(so)
	}

	srv, err := server.New(config.New(), so.authenticator, store, so.options...)
	require.NoError(t, err)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &serverFixture{userRepo: userRepo, ts: ts}
}

// browser is a cookie-keeping client that does not follow redirects.
type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func (f *serverFixture) newBrowser(t *testing.T) *browser {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &browser{
		t:    t,
		base: f.ts.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	b.t.Helper()

	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, string(body)
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()

	req, err := http.NewRequest(http.MethodGet, b.base+path, nil)
	require.NoError(b.t, err)
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()

	req, err := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) requireRedirect(resp *http.Response, location string) {
	b.t.Helper()

	require.Equal(b.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(b.t, location, resp.Header.Get("Location"))
}

func signupForm(username, email, password string) url.Values {
	return url.Values{
		"firstname": {"Alice"},
		"lastname":  {"Smith"},
		"username":  {username},
		"email":     {email},
		"password":  {password},
		"tos":       {"on"},
	}
}

func loginForm(username, password string) url.Values {
	return url.Values{"username": {username}, "password": {password}}
}

func TestGuard_AnonymousIsSentToLoginWithOneShotNotice(t *testing.T) {
	f := setupServer(t)
	b := f.newBrowser(t)

	resp, _ := b.get(server.RouteChat)
	b.requireRedirect(resp, server.RouteLogin)

	resp, body := b.get(server.RouteLogin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, server.MsgLoginFirst)

	_, body = b.get(server.RouteLogin)
	assert.NotContains(t, body, server.MsgLoginFirst)
}

func TestScenario_RegisterLoginLogout(t *testing.T) {
	f := setupServer(t)
	b := f.newBrowser(t)

	resp, _ := b.post(server.RouteSignup, signupForm("alice", "a@x.com", "p@ss1"))
	b.requireRedirect(resp, server.RouteLogin)
	assert.Equal(t, 1, f.userRepo.Count())

	_, body := b.get(server.RouteLogin)
	assert.Contains(t, body, server.MsgSignedUp)

	// Wrong password leaves the session anonymous
	resp, body = b.post(server.RouteLogin, loginForm("alice", "wrong"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, auth.MsgInvalidLogin)

	resp, _ = b.get(server.RouteChat)
	b.requireRedirect(resp, server.RouteLogin)
	b.get(server.RouteLogin)

	resp, _ = b.post(server.RouteLogin, loginForm("alice", "p@ss1"))
	b.requireRedirect(resp, server.RouteChat)

	resp, body = b.get(server.RouteChat)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, server.MsgLoggedIn)
	assert.Contains(t, body, "alice")

	// Anonymous-only pages bounce a signed in user
	for _, path := range []string{server.RouteLogin, server.RouteSignup, server.RouteHome} {
		resp, _ = b.get(path)
		b.requireRedirect(resp, server.RouteChat)
	}
	_, body = b.get(server.RouteChat)
	assert.Contains(t, body, server.MsgLogoutFirst)

	resp, _ = b.get(server.RouteLogout)
	b.requireRedirect(resp, server.RouteHome)

	_, body = b.get(server.RouteHome)
	assert.Contains(t, body, server.MsgLoggedOut)

	resp, _ = b.get(server.RouteChat)
	b.requireRedirect(resp, server.RouteLogin)
	resp, _ = b.get(server.RouteLogout)
	b.requireRedirect(resp, server.RouteLogin)
}

func TestSignup_ValidationErrorsRerenderForm(t *testing.T) {
	f := setupServer(t)
	b := f.newBrowser(t)

	form := signupForm("alice", "not-an-email", "p@ss1")
	form.Del("tos")

	resp, body := b.post(server.RouteSignup, form)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Enter a valid email address")
	assert.Contains(t, body, "You must accept the terms of service")
	assert.Contains(t, body, `value="alice"`)
	assert.NotContains(t, body, "p@ss1")
	assert.Zero(t, f.userRepo.Count())
}

func TestSignup_Conflicts(t *testing.T) {
	f := setupServer(t)

	resp, _ := f.newBrowser(t).post(server.RouteSignup, signupForm("alice", "a@x.com", "p@ss1"))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	tests := []struct {
		name     string
		form     url.Values
		expected string
	}{
		{"username taken", signupForm("alice", "other@x.com", "secret"), auth.MsgUsernameTaken},
		{"email taken", signupForm("bob", "A@X.com", "secret"), auth.MsgEmailTaken},
		{"both taken", signupForm("alice", "a@x.com", "secret"), auth.MsgUsernameTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := f.newBrowser(t).post(server.RouteSignup, tt.form)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, body, tt.expected)
			assert.Equal(t, 1, f.userRepo.Count())
		})
	}
}

func TestLogin_FailureMessagesAreIdentical(t *testing.T) {
	f := setupServer(t)
	b := f.newBrowser(t)

	resp, _ := b.post(server.RouteSignup, signupForm("alice", "a@x.com", "p@ss1"))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	b.get(server.RouteLogin)

	_, wrongPassword := b.post(server.RouteLogin, loginForm("alice", "wrong"))
	_, unknownUser := b.post(server.RouteLogin, loginForm("mallory", "wrong"))

	assert.Contains(t, wrongPassword, auth.MsgInvalidLogin)
	assert.Equal(t, wrongPassword, unknownUser)
}

// faultyAuthenticator fails every flow the way an unavailable backend would.
type faultyAuthenticator struct{}

var errDatabaseDown = errors.New("database down")

func (faultyAuthenticator) Register(context.Context, auth.RegistrationInput) (*users.User, error) {
	return nil, &auth.SystemFault{Op: "find user by username", Err: errDatabaseDown}
}

func (faultyAuthenticator) Login(context.Context, string, string) (*users.User, error) {
	return nil, &auth.SystemFault{Op: "find user by username", Err: errDatabaseDown}
}

func TestSystemFaultsShowGenericMessages(t *testing.T) {
	f := setupServer(t, func(so *serverOptions) {
		so.authenticator = faultyAuthenticator{}
	})
	b := f.newBrowser(t)

	resp, body := b.post(server.RouteLogin, loginForm("alice", "p@ss1"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, auth.MsgInvalidLogin)
	assert.NotContains(t, body, errDatabaseDown.Error())

	resp, _ = b.post(server.RouteSignup, signupForm("alice", "a@x.com", "p@ss1"))
	b.requireRedirect(resp, server.RouteHome)

	_, body = b.get(server.RouteHome)
	assert.Contains(t, body, server.MsgSystemFault)
	assert.NotContains(t, body, errDatabaseDown.Error())
}

func TestCatchAllRendersHome(t *testing.T) {
	f := setupServer(t)
	b := f.newBrowser(t)

	resp, body := b.get("/some/unknown/path/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `action="/sign-up/"`)
	assert.Equal(t, "SAMEORIGIN", resp.Header.Get("X-Frame-Options"))
}

func TestHTMXRedirect(t *testing.T) {
	f := setupServer(t)
	b := f.newBrowser(t)

	req, err := http.NewRequest(http.MethodGet, f.ts.URL+server.RouteChat, nil)
	require.NoError(t, err)
	req.Header.Set("HX-Request", "true")

	resp, _ := b.do(req)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, server.RouteLogin, resp.Header.Get("HX-Redirect"))
}

func TestSessionCookie(t *testing.T) {
	f := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, server.RouteHome, nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()
	f.ts.Config.Handler.ServeHTTP(rec, req)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, config.New().GetSessionCookieName(), cookie.Name)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
}

func TestSessionSurvivesAcrossRequests(t *testing.T) {
	f := setupServer(t)
	b := f.newBrowser(t)

	b.get(server.RouteHome)
	u, err := url.Parse(f.ts.URL)
	require.NoError(t, err)
	first := b.client.Jar.Cookies(u)
	require.Len(t, first, 1)

	b.get(server.RouteLogin)
	second := b.client.Jar.Cookies(u)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Value, second[0].Value)
}

func (b *browser) sessionCookie() *http.Cookie {
	b.t.Helper()

	u, err := url.Parse(b.base)
	require.NoError(b.t, err)
	cookies := b.client.Jar.Cookies(u)
	require.Len(b.t, cookies, 1)
	return cookies[0]
}

// withSessionCookie returns a fresh browser that replays value as its
// session cookie.
func (f *serverFixture) withSessionCookie(t *testing.T, value string) *browser {
	t.Helper()

	b := f.newBrowser(t)
	u, err := url.Parse(f.ts.URL)
	require.NoError(t, err)
	b.client.Jar.SetCookies(u, []*http.Cookie{{Name: config.New().GetSessionCookieName(), Value: value, Path: "/"}})
	return b
}

func TestLogin_RotatesSessionCookie(t *testing.T) {
	f := setupServer(t)
	victim := f.newBrowser(t)

	resp, _ := victim.post(server.RouteSignup, signupForm("alice", "a@x.com", "p@ss1"))
	victim.requireRedirect(resp, server.RouteLogin)
	victim.get(server.RouteLogin)
	anonymous := victim.sessionCookie().Value

	resp, _ = victim.post(server.RouteLogin, loginForm("alice", "p@ss1"))
	victim.requireRedirect(resp, server.RouteChat)
	require.Len(t, resp.Cookies(), 1)
	signedIn := victim.sessionCookie().Value
	require.NotEqual(t, anonymous, signedIn)

	resp, _ = victim.get(server.RouteChat)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// A planted pre-login cookie does not inherit the login
	attacker := f.withSessionCookie(t, anonymous)
	resp, _ = attacker.get(server.RouteChat)
	attacker.requireRedirect(resp, server.RouteLogin)
	assert.NotEqual(t, anonymous, attacker.sessionCookie().Value)

	resp, _ = victim.get(server.RouteLogout)
	victim.requireRedirect(resp, server.RouteHome)
	require.NotEqual(t, signedIn, victim.sessionCookie().Value)

	_, body := victim.get(server.RouteHome)
	assert.Contains(t, body, server.MsgLoggedOut)

	replay := f.withSessionCookie(t, signedIn)
	resp, _ = replay.get(server.RouteChat)
	replay.requireRedirect(resp, server.RouteLogin)
}

func TestStaticCSS(t *testing.T) {
	f := setupServer(t)
	b := f.newBrowser(t)

	resp, body := b.get("/css/site.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")
	assert.NotEmpty(t, resp.Header.Get("Cache-Control"))
	assert.Contains(t, body, ".flash")

	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)

	req, err := http.NewRequest(http.MethodGet, f.ts.URL+"/css/site.css", nil)
	require.NoError(t, err)
	req.Header.Set("If-None-Match", etag)
	resp, body = b.do(req)
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	assert.Empty(t, body)

	req, err = http.NewRequest(http.MethodGet, f.ts.URL+"/css/site.css", nil)
	require.NoError(t, err)
	req.Header.Set("If-None-Match", `"stale"`)
	resp, _ = b.do(req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = b.get("/css/missing.css")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type panickingRenderer struct{}

func (panickingRenderer) Render(io.Writer, string, server.PageData) error {
	panic("template exploded")
}

func TestRecoverMiddleware(t *testing.T) {
	f := setupServer(t, func(so *serverOptions) {
		so.options = append(so.options, server.WithRenderer(panickingRenderer{}))
	})
	b := f.newBrowser(t)

	resp, body := b.get(server.RouteHome)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, body, "template exploded")
}

func TestNew_RequiresCollaborators(t *testing.T) {
	store, err := sessions.NewStore(fakesessionrepo.NewFakeSessionRepo(), fakeuserrepo.NewFakeUserRepo(), time.Minute)
	require.NoError(t, err)

	_, err = server.New(config.New(), nil, store)
	require.Error(t, err)

	_, err = server.New(config.New(), faultyAuthenticator{}, nil)
	require.Error(t, err)
}
