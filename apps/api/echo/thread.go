package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/thread"
)

const boardPath = "/bbs.html"

type threadPages struct {
	svc        *thread.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerThreadPages(
	e *echo.Echo,
	auth echo.MiddlewareFunc,
	svc *thread.Service,
	validate *validator.Validate,
	translator ut.Translator,
) {
	pages := threadPages{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	e.GET(boardPath, pages.board, auth)
	e.POST("/new", pages.create, auth)
}

// Handlers

func (pages *threadPages) board(ctx echo.Context) error {
	threads, err := pages.svc.Latest(ctx.Request().Context(), thread.LatestLimit)
	if err != nil {
		return errors.Wrap(err, "querying latest threads")
	}
	return render(ctx, http.StatusOK, "bbs", page{Title: "Board", Data: threads})
}

func (pages *threadPages) create(ctx echo.Context) error {
	var data thread.NewThread
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewThread")
	}
	if err := data.Validate(pages.validate); err != nil {
		fldErrs, ok := formErrors(err, pages.translator)
		if !ok {
			return err
		}
		for fld, msg := range fldErrs {
			setFlash(ctx, fld+": "+msg)
			break
		}
		return ctx.Redirect(http.StatusFound, boardPath)
	}

	if _, err := pages.svc.Create(ctx.Request().Context(), getSession(ctx).Email, data); err != nil {
		return errors.Wrap(err, "creating thread")
	}
	return ctx.Redirect(http.StatusFound, boardPath)
}
