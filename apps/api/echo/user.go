package echoapi

import (
	"net/http"
	"net/url"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/user"
)

const signupSuccess = "Thanks for registering! You can now log in."

type userPages struct {
	svc        *user.Service
	sessions   *sessionManager
	validate   *validator.Validate
	translator ut.Translator
}

func registerUserPages(
	e *echo.Echo,
	auth echo.MiddlewareFunc,
	svc *user.Service,
	sessions *sessionManager,
	validate *validator.Validate,
	translator ut.Translator,
) {
	pages := userPages{
		svc:        svc,
		sessions:   sessions,
		validate:   validate,
		translator: translator,
	}

	e.GET("/", home)
	e.GET("/index.html", home)
	e.Match([]string{http.MethodGet, http.MethodPost}, loginPath, pages.login)
	e.Match([]string{http.MethodGet, http.MethodPost}, "/signup", pages.signup)
	e.GET("/logout", pages.logout)

	// static authed pages
	e.GET("/info.html", staticPage("info", "Info"), auth)
	e.GET("/download.html", staticPage("download", "Downloads"), auth)
	e.GET("/test.html", staticPage("test", "Test"), auth)
}

// Handlers

func home(ctx echo.Context) error {
	return render(ctx, http.StatusOK, "index", page{Title: "Home"})
}

func staticPage(name, title string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return render(ctx, http.StatusOK, name, page{Title: title})
	}
}

func (pages *userPages) login(ctx echo.Context) error {
	if getSession(ctx) != nil {
		return ctx.Redirect(http.StatusFound, "/")
	}

	var data user.LoginUser
	if ctx.Request().Method == http.MethodGet {
		return render(ctx, http.StatusOK, "login", page{Title: "Log in", Form: data})
	}

	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginUser")
	}
	if err := data.Validate(pages.validate); err != nil {
		return pages.renderFormErrors(ctx, "login", "Log in", data, err)
	}

	usr, err := pages.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == user.ErrInvalidCredentials {
			return render(ctx, http.StatusBadRequest, "login", page{
				Title:  "Log in",
				Form:   user.LoginUser{Email: data.Email},
				Errors: map[string]string{"": user.ErrInvalidCredentials.Error()},
			})
		}
		return errors.Wrap(err, "authenticating")
	}

	if err = pages.sessions.login(ctx, usr); err != nil {
		return errors.Wrap(err, "logging in")
	}
	return ctx.Redirect(http.StatusFound, "/")
}

func (pages *userPages) signup(ctx echo.Context) error {
	var data user.NewUser
	if ctx.Request().Method == http.MethodGet {
		return render(ctx, http.StatusOK, "signup", page{Title: "Sign up", Form: data})
	}

	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	reqCtx := ctx.Request().Context()
	if err := data.Validate(reqCtx, pages.validate, pages.svc); err != nil {
		return pages.renderFormErrors(ctx, "signup", "Sign up", user.NewUser{Name: data.Name, Email: data.Email}, err)
	}

	if _, err := pages.svc.Create(reqCtx, data); err != nil {
		return pages.renderFormErrors(ctx, "signup", "Sign up", user.NewUser{Name: data.Name, Email: data.Email}, err)
	}

	setFlash(ctx, signupSuccess)
	return ctx.Redirect(http.StatusFound, loginPath)
}

func (pages *userPages) logout(ctx echo.Context) error {
	pages.sessions.logout(ctx)

	next := "/"
	if ref, err := url.Parse(ctx.Request().Referer()); err == nil && ref.Path != "" && ref.Host == ctx.Request().Host {
		next = ref.Path
	}
	return ctx.Redirect(http.StatusFound, next)
}

// renderFormErrors re-renders a form page with its validation errors; other errors are returned as is.
func (pages *userPages) renderFormErrors(ctx echo.Context, name, title string, form interface{}, err error) error {
	fldErrs, ok := formErrors(err, pages.translator)
	if !ok {
		return err
	}
	return render(ctx, http.StatusBadRequest, name, page{Title: title, Form: form, Errors: fldErrs})
}
