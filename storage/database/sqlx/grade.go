package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
)

const (
	gradeColumns = `id, name, middle_grade, final_grade, grade`

	upsertGradeRecordQuery = `INSERT INTO grade_record (` + gradeColumns + `) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	middle_grade = EXCLUDED.middle_grade,
	final_grade = EXCLUDED.final_grade,
	grade = EXCLUDED.grade`

	selectGradeRecordsQuery    = `SELECT ` + gradeColumns + ` FROM grade_record`
	deleteAllGradeRecordsQuery = `DELETE FROM grade_record`
)

var gradeOrderingFields = map[string]bool{"id": true, "name": true, "middle_grade": true, "final_grade": true, "grade": true}

type gradeRepository struct {
	db core.DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db core.DB) *gradeRepository {
	return &gradeRepository{db: db}
}

// SaveGradeRecords upserts the records one by one, in order, inside a single transaction.
func (repo gradeRepository) SaveGradeRecords(ctx context.Context, records []grade.GradeRecord) error {
	return core.RunInTx(ctx, repo.db, func(exec core.DBExecutor) error {
		for _, rec := range records {
			_, err := exec.ExecContext(ctx, upsertGradeRecordQuery, rec.ID, rec.Name, rec.MiddleGrade, rec.FinalGrade, rec.Grade)
			if err != nil {
				return errors.Wrapf(err, "upserting grade record %d", rec.ID)
			}
		}
		return nil
	})
}

func (repo gradeRepository) QueryAllGradeRecords(ctx context.Context, ordering ...core.DBOrdering) ([]grade.GradeRecord, error) {
	query := selectGradeRecordsQuery + orderBy(ordering, gradeOrderingFields, grade.DefaultOrdering)

	records := make([]grade.GradeRecord, 0)
	if err := repo.db.SelectContext(ctx, &records, query); err != nil {
		return nil, errors.Wrap(err, "selecting grade records")
	}
	return records, nil
}

func (repo gradeRepository) DeleteAllGradeRecords(ctx context.Context) error {
	return core.RunInTx(ctx, repo.db, func(exec core.DBExecutor) error {
		_, err := exec.ExecContext(ctx, deleteAllGradeRecordsQuery)
		return errors.Wrap(err, "deleting grade records")
	})
}
