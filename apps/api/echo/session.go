package echoapi

import (
	"net/http"
	"net/url"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/user"
)

const (
	contextSessionKey = "session"
	loginPath         = "/login"
	flashMaxAge       = 60 // seconds
)

var errUnexpectedSigningMethod = errors.New("unexpected signing method")

// Session is the logged in user, as carried by the session cookie.
type Session struct {
	UserID string
	Email  string
	Name   string
}

// sessionClaims are the claims of the signed session cookie.
type sessionClaims struct {
	jwt.StandardClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

type sessionManager struct {
	users      *user.Service
	key        []byte
	issuer     string
	cookieName string
	flashName  string
	lifetime   time.Duration
	secure     bool
}

func newSessionManager(conf *core.Config, users *user.Service) *sessionManager {
	return &sessionManager{
		users:      users,
		key:        []byte(conf.SecretKey),
		issuer:     conf.AppName,
		cookieName: conf.Server.SessionCookieName,
		flashName:  conf.Server.FlashCookieName,
		lifetime:   conf.Server.SessionExpirationDelta,
		secure:     !(conf.Debug || conf.TestMode),
	}
}

// token returns the signed session token of usr.
func (sm *sessionManager) token(usr user.User) (string, error) {
	now := time.Now()
	claims := &sessionClaims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    sm.issuer,
			Subject:   usr.ID,
			ExpiresAt: now.Add(sm.lifetime).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: usr.Email,
		Name:  usr.Name,
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(sm.key)
	return ss, errors.Wrap(err, "signing session token")
}

func (sm *sessionManager) parse(token string) (*Session, error) {
	claims := new(sessionClaims)
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedSigningMethod
		}
		return sm.key, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid session token")
	}
	return &Session{UserID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}

// login stores the session of usr in a cookie.
func (sm *sessionManager) login(ctx echo.Context, usr user.User) error {
	token, err := sm.token(usr)
	if err != nil {
		return err
	}
	ctx.SetCookie(&http.Cookie{
		Name:     sm.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(sm.lifetime),
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (sm *sessionManager) logout(ctx echo.Context) {
	sm.expireCookie(ctx, sm.cookieName)
	ctx.Set(contextSessionKey, nil)
}

func (sm *sessionManager) expireCookie(ctx echo.Context, name string) {
	ctx.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
}

// load is a middleware that puts the cookie's Session in the context.
// The session is refreshed from the user store; invalid cookies and unknown users are dropped.
func (sm *sessionManager) load(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ctx.Set(flashCookieContextKey, sm.flashName)
		cookie, err := ctx.Cookie(sm.cookieName)
		if err != nil || cookie.Value == "" {
			return next(ctx)
		}

		sess, err := sm.parse(cookie.Value)
		if err != nil {
			sm.expireCookie(ctx, sm.cookieName)
			return next(ctx)
		}
		usr, err := sm.users.GetByID(ctx.Request().Context(), sess.UserID)
		switch {
		case err == nil:
			ctx.Set(contextSessionKey, &Session{UserID: usr.ID, Email: usr.Email, Name: usr.Name})
		case errors.Cause(err) == user.ErrNotFound:
			sm.expireCookie(ctx, sm.cookieName)
		default:
			return errors.Wrap(err, "loading session user")
		}
		return next(ctx)
	}
}

func getSession(ctx echo.Context) *Session {
	sess, _ := ctx.Get(contextSessionKey).(*Session)
	return sess
}

// sessionUser returns the session as a user.User, for logging.
func sessionUser(ctx echo.Context) user.User {
	var usr user.User
	if sess := getSession(ctx); sess != nil {
		usr.ID = sess.UserID
		usr.Email = sess.Email
		usr.Name = sess.Name
	}
	return usr
}

// requireLogin redirects anonymous users to the login page.
func requireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if getSession(ctx) == nil {
			return ctx.Redirect(http.StatusFound, loginPath)
		}
		return next(ctx)
	}
}

// Flash messages

const flashCookieContextKey = "flashCookie"

func setFlash(ctx echo.Context, msg string) {
	name, _ := ctx.Get(flashCookieContextKey).(string)
	if name == "" {
		return
	}
	ctx.SetCookie(&http.Cookie{
		Name:     name,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		MaxAge:   flashMaxAge,
		HttpOnly: true,
	})
}

// popFlash returns the pending flash message and clears it.
func popFlash(ctx echo.Context) string {
	name, _ := ctx.Get(flashCookieContextKey).(string)
	if name == "" {
		return ""
	}
	cookie, err := ctx.Cookie(name)
	if err != nil || cookie.Value == "" {
		return ""
	}
	ctx.SetCookie(&http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1, Expires: time.Unix(0, 0), HttpOnly: true})
	msg, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return msg
}
