package grade

import (
	"fmt"
	"math"

	"github.com/trezcool/gradebook/core"
)

// Grade weights
const (
	MiddleWeight = 0.3
	FinalWeight  = 0.7
)

// ComputeGrade returns the weighted overall grade, rounded half up: floor(0.3*middle + 0.7*final + 0.5).
// Inputs are not bounds checked.
func ComputeGrade(middle, final float64) int {
	// explicit conversions keep the products rounded separately (no fused multiply-add)
	weighted := float64(MiddleWeight*middle) + float64(FinalWeight*final)
	return int(math.Floor(weighted + 0.5))
}

// GradeRecord is one student's grades.
// Grade is derived from MiddleGrade and FinalGrade by NewGradeRecord and is never recomputed:
// records are only ever replaced whole, so always build them with NewGradeRecord.
type GradeRecord struct {
	ID          int    `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	MiddleGrade int    `json:"middlegrade" db:"middle_grade"`
	FinalGrade  int    `json:"finalgrade" db:"final_grade"`
	Grade       int    `json:"grade" db:"grade"`
}

func NewGradeRecord(id int, name string, middle, final int) GradeRecord {
	return GradeRecord{
		ID:          id,
		Name:        name,
		MiddleGrade: middle,
		FinalGrade:  final,
		Grade:       ComputeGrade(float64(middle), float64(final)),
	}
}

// NameMaxLength is the longest student name accepted, in characters.
const NameMaxLength = 128

// ImportRow is one parsed line of an imported sheet.
type ImportRow struct {
	Line        int // 1-based line number in the sheet, header included
	ID          int
	Name        string
	MiddleGrade int
	FinalGrade  int
}

// fieldError locates msg at the row's line and the given column, eg: "line 3: middlegrade".
func (r ImportRow) fieldError(col, msg string) core.FieldError {
	return core.FieldError{Field: fmt.Sprintf("line %d: %s", r.Line, col), Error: msg}
}

func (r ImportRow) Record() GradeRecord {
	return NewGradeRecord(r.ID, r.Name, r.MiddleGrade, r.FinalGrade)
}

// Listing is the full grades table along with the caller's role.
type Listing struct {
	Records []GradeRecord
	IsAdmin bool
}

// ImportResult summarizes a successful import.
type ImportResult struct {
	Rows       int // parsed rows
	Saved      int // distinct records written
	Duplicates int // rows overridden by a later row with the same id
}

// Export is a serialized grades sheet ready to be downloaded.
type Export struct {
	Filename    string
	ContentType string
	Content     []byte
}
