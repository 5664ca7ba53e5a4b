package grade

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

// DefaultOrdering is applied when listing and exporting: by id, ascending.
var DefaultOrdering = core.DBOrdering{Field: "id", Ascending: true}

type (
	Repository interface {
		// SaveGradeRecords inserts records, replacing any existing record with the same id.
		// Either every record is saved or none is.
		SaveGradeRecords(ctx context.Context, records []GradeRecord) error
		QueryAllGradeRecords(ctx context.Context, ordering ...core.DBOrdering) ([]GradeRecord, error)
		// DeleteAllGradeRecords removes every record in a single transaction.
		DeleteAllGradeRecords(ctx context.Context) error
	}

	Service struct {
		repo   Repository
		roles  RoleChecker
		logger core.Logger
		now    func() time.Time
	}
)

func NewService(repo Repository, roles RoleChecker, logger core.Logger) (*Service, error) {
	err := vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(roles, "roles"),
		vala.IsNotNil(logger, "logger"),
	).Check()
	if err != nil {
		return nil, errors.Wrap(err, "creating grade service")
	}
	return &Service{repo: repo, roles: roles, logger: logger, now: time.Now}, nil
}

// Import reads a grades sheet and saves its rows.
// The sheet format is taken from filename's extension. Any invalid row aborts the whole import with a
// *core.ValidationError and nothing is saved. Rows sharing an id resolve to the last one in the sheet.
func (svc *Service) Import(ctx context.Context, r io.Reader, filename string) (ImportResult, error) {
	format, err := FormatFromFilename(filename)
	if err != nil {
		return ImportResult{}, err
	}
	rows, err := ReadSheet(r, format)
	if err != nil {
		return ImportResult{}, err
	}
	return svc.ImportRows(ctx, rows)
}

// ImportRows saves already parsed rows. See Import.
func (svc *Service) ImportRows(ctx context.Context, rows []ImportRow) (ImportResult, error) {
	records, dups := dedupeRows(rows)
	res := ImportResult{Rows: len(rows), Saved: len(records), Duplicates: dups}
	if len(records) == 0 {
		return res, nil
	}

	if err := svc.repo.SaveGradeRecords(ctx, records); err != nil {
		return ImportResult{}, errors.Wrap(err, "saving grade records")
	}
	svc.logger.Info(fmt.Sprintf("imported %d grade records (%d rows, %d duplicates)", res.Saved, res.Rows, res.Duplicates))
	return res, nil
}

// dedupeRows builds one record per id; the last row wins and keeps the position of the first occurrence.
func dedupeRows(rows []ImportRow) ([]GradeRecord, int) {
	var dups int
	positions := make(map[int]int, len(rows))
	records := make([]GradeRecord, 0, len(rows))
	for _, row := range rows {
		if pos, ok := positions[row.ID]; ok {
			records[pos] = row.Record()
			dups++
			continue
		}
		positions[row.ID] = len(records)
		records = append(records, row.Record())
	}
	return records, dups
}

// ListGrades returns every record flagged with whether caller is an admin.
// Records are ordered by the given sheet columns (eg: "grade", "name"), then by id; unknown columns are ignored.
func (svc *Service) ListGrades(ctx context.Context, caller string, ordering ...core.DBOrdering) (Listing, error) {
	records, err := svc.repo.QueryAllGradeRecords(ctx, columnsOrdering(ordering)...)
	if err != nil {
		return Listing{}, errors.Wrap(err, "querying grade records")
	}
	return Listing{Records: records, IsAdmin: svc.roles.IsAdmin(caller)}, nil
}

// columnsOrdering maps sheet column names to DB fields and always ends with DefaultOrdering.
func columnsOrdering(ordering []core.DBOrdering) []core.DBOrdering {
	fields := map[string]string{
		colID:          "id",
		colName:        "name",
		colMiddleGrade: "middle_grade",
		colFinalGrade:  "final_grade",
		colGrade:       "grade",
	}
	dbOrdering := make([]core.DBOrdering, 0, len(ordering)+1)
	for _, ord := range ordering {
		field, ok := fields[core.CleanString(ord.Field, true /* lower */)]
		if !ok {
			continue
		}
		dbOrdering = append(dbOrdering, core.DBOrdering{Field: field, Ascending: ord.Ascending})
		if field == DefaultOrdering.Field {
			return dbOrdering
		}
	}
	return append(dbOrdering, DefaultOrdering)
}

// IsAdmin reports whether caller may manage grades.
func (svc *Service) IsAdmin(caller string) bool {
	return svc.roles.IsAdmin(caller)
}

// Export writes every record, ordered by id, as a sheet of the given format.
// An empty table produces a header-only sheet.
func (svc *Service) Export(ctx context.Context, format string) (Export, error) {
	if format == "" {
		format = FormatXLSX
	}
	if format != FormatXLSX && format != FormatCSV {
		return Export{}, core.NewValidationError(ErrUnsupportedFormat, core.FieldError{Field: "format", Error: ErrUnsupportedFormat.Error()})
	}

	records, err := svc.repo.QueryAllGradeRecords(ctx, DefaultOrdering)
	if err != nil {
		return Export{}, errors.Wrap(err, "querying grade records")
	}

	var buf bytes.Buffer
	if err = WriteSheet(&buf, format, records); err != nil {
		return Export{}, errors.Wrap(err, "writing sheet")
	}
	return Export{
		Filename:    fmt.Sprintf("grades_%s.%s", svc.now().Format("20060102_150405"), format),
		ContentType: ContentType(format),
		Content:     buf.Bytes(),
	}, nil
}

// DeleteAll removes every record. Deleting from an empty table is not an error.
func (svc *Service) DeleteAll(ctx context.Context) error {
	if err := svc.repo.DeleteAllGradeRecords(ctx); err != nil {
		return errors.Wrap(err, "deleting grade records")
	}
	svc.logger.Info("deleted all grade records")
	return nil
}
