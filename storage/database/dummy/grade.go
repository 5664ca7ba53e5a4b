package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
)

type gradeRepository struct {
	db *gradeTable
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db.grade}
}

// SaveGradeRecords applies every record under a single lock, so readers never see a partial import.
func (repo *gradeRepository) SaveGradeRecords(_ context.Context, records []grade.GradeRecord) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, rec := range records {
		repo.db.table[rec.ID] = rec
	}
	return nil
}

func (repo *gradeRepository) QueryAllGradeRecords(_ context.Context, ordering ...core.DBOrdering) ([]grade.GradeRecord, error) {
	repo.db.RLock()
	records := make([]grade.GradeRecord, 0, len(repo.db.table))
	for _, rec := range repo.db.table {
		records = append(records, rec)
	}
	repo.db.RUnlock()

	if len(ordering) == 0 {
		ordering = []core.DBOrdering{grade.DefaultOrdering}
	}
	sort.SliceStable(records, func(i, j int) bool {
		for _, ord := range ordering {
			if cmp := compareGradeRecords(records[i], records[j], ord.Field); cmp != 0 {
				if ord.Ascending {
					return cmp < 0
				}
				return cmp > 0
			}
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

func compareGradeRecords(a, b grade.GradeRecord, field string) int {
	cmpInt := func(x, y int) int {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	switch field {
	case "id":
		return cmpInt(a.ID, b.ID)
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "middle_grade":
		return cmpInt(a.MiddleGrade, b.MiddleGrade)
	case "final_grade":
		return cmpInt(a.FinalGrade, b.FinalGrade)
	case "grade":
		return cmpInt(a.Grade, b.Grade)
	}
	return 0
}

func (repo *gradeRepository) DeleteAllGradeRecords(_ context.Context) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table = make(map[int]grade.GradeRecord)
	return nil
}
