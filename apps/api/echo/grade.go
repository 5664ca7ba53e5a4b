package echoapi

import (
	"fmt"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/grade"
)

const gradesPath = "/grades.html"

type gradePages struct {
	svc *grade.Service
}

func registerGradePages(e *echo.Echo, auth echo.MiddlewareFunc, svc *grade.Service) {
	pages := gradePages{svc: svc}
	admin := adminMiddleware(svc)

	e.GET(gradesPath, pages.list, auth)
	e.GET("/export", pages.export, auth)
	e.Match([]string{http.MethodGet, http.MethodPost}, "/import", pages.importSheet, auth, admin)
	e.Match([]string{http.MethodGet, http.MethodPost}, "/delete", pages.deleteAll, auth, admin)
}

// adminMiddleware only lets grade admins through.
func adminMiddleware(svc *grade.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if sess := getSession(ctx); sess != nil && svc.IsAdmin(sess.Email) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// Handlers

func (pages *gradePages) list(ctx echo.Context) error {
	var ord Ordering
	ord.Bind(ctx)

	listing, err := pages.svc.ListGrades(ctx.Request().Context(), getSession(ctx).Email, ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "listing grades")
	}
	return render(ctx, http.StatusOK, "grades", page{Title: "Grades", Data: listing})
}

func (pages *gradePages) importSheet(ctx echo.Context) error {
	if ctx.Request().Method == http.MethodGet {
		return render(ctx, http.StatusOK, "import", page{Title: "Import grades"})
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		if isBadUpload(err) {
			return render(ctx, http.StatusBadRequest, "import", page{
				Title:  "Import grades",
				Errors: map[string]string{"file": errNoFile},
			})
		}
		return errors.Wrap(err, "reading uploaded file")
	}
	src, err := file.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = src.Close() }()

	res, err := pages.svc.Import(ctx.Request().Context(), src, file.Filename)
	if err != nil {
		if fldErrs, ok := formErrors(err, nil); ok {
			return render(ctx, http.StatusBadRequest, "import", page{Title: "Import grades", Errors: fldErrs})
		}
		return errors.Wrap(err, "importing grades")
	}

	setFlash(ctx, fmt.Sprintf("Imported %d grade records.", res.Saved))
	return ctx.Redirect(http.StatusFound, gradesPath)
}

func (pages *gradePages) export(ctx echo.Context) error {
	ex, err := pages.svc.Export(ctx.Request().Context(), ctx.QueryParam("format"))
	if err != nil {
		return errors.Wrap(err, "exporting grades")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", ex.Filename))
	return ctx.Blob(http.StatusOK, ex.ContentType, ex.Content)
}

func (pages *gradePages) deleteAll(ctx echo.Context) error {
	if err := pages.svc.DeleteAll(ctx.Request().Context()); err != nil {
		return errors.Wrap(err, "deleting grades")
	}
	setFlash(ctx, "All grade records were deleted.")
	return ctx.Redirect(http.StatusFound, gradesPath)
}

// isBadUpload reports whether err is the client's fault.
// Only spooling the upload to a temp file can fail on our side.
func isBadUpload(err error) bool {
	var pathErr *fs.PathError
	return !errors.As(err, &pathErr)
}
