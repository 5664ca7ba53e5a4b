package grade

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeGrade(t *testing.T) {
	tests := []struct {
		middle, final float64
		want          int
	}{
		{middle: 70, final: 90, want: 84},
		{middle: 80, final: 90, want: 87},
		{middle: 0, final: 0, want: 0},
		{middle: 100, final: 100, want: 100},
		{middle: 85, final: 85, want: 85},
		{middle: 59, final: 60, want: 60}, // 59.7
		{middle: 5, final: 0, want: 2},    // 1.5 rounds up
		{middle: 0, final: 5, want: 4},    // 3.5 rounds up
		{middle: 1, final: 0, want: 0},    // 0.3
		{middle: 0, final: 1, want: 1},    // 0.7
		{middle: 120, final: -10, want: 29},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ComputeGrade(tt.middle, tt.final), "ComputeGrade(%v, %v)", tt.middle, tt.final)
	}
}

func TestNewGradeRecord(t *testing.T) {
	rec := NewGradeRecord(7, "Alice", 70, 90)
	assert.Equal(t, GradeRecord{ID: 7, Name: "Alice", MiddleGrade: 70, FinalGrade: 90, Grade: 84}, rec)

	row := ImportRow{Line: 2, ID: 7, Name: "Alice", MiddleGrade: 70, FinalGrade: 90}
	assert.Equal(t, rec, row.Record())
}

func TestAdminSet(t *testing.T) {
	set := NewAdminSet("Admin@Admin.com", " ", "boss@test.cd ")

	tests := []struct {
		identity string
		want     bool
	}{
		{identity: "admin@admin.com", want: true},
		{identity: " ADMIN@admin.com", want: true},
		{identity: "boss@test.cd", want: true},
		{identity: "student@test.cd"},
		{identity: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, set.IsAdmin(tt.identity), tt.identity)
	}
}
