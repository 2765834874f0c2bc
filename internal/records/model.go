package records

import "strings"

const (
	TotalMax      = 600
	InternalMax   = 300
	UniversityMax = 300
	MinSemester   = 1
	MaxSemesters  = 8
	MinAge        = 15
	MaxAge        = 30
	NameMaxLen    = 120
	MinAttendance = 0.0
	MaxAttendance = 100.0
)

// Department is the closed set of departments a student can belong to.
type Department string

const (
	DepartmentCSE   Department = "CSE"
	DepartmentECE   Department = "ECE"
	DepartmentEEE   Department = "EEE"
	DepartmentMECH  Department = "MECH"
	DepartmentCIVIL Department = "CIVIL"
	DepartmentIT    Department = "IT"
)

// Departments lists every accepted department in display order.
var Departments = []Department{
	DepartmentCSE,
	DepartmentECE,
	DepartmentEEE,
	DepartmentMECH,
	DepartmentCIVIL,
	DepartmentIT,
}

// Valid reports whether d is one of Departments.
func (d Department) Valid() bool {
	for _, known := range Departments {
		if d == known {
			return true
		}
	}
	return false
}

// ParseDepartment normalizes case and surrounding space.
func ParseDepartment(raw string) Department {
	return Department(strings.ToUpper(strings.TrimSpace(raw)))
}

// SemesterEntry is one semester of a student's academic record.
type SemesterEntry struct {
	Semester        int     `json:"semester" yaml:"semester"`
	InternalMarks   int     `json:"internal_marks" yaml:"internal_marks"`
	UniversityMarks int     `json:"university_marks" yaml:"university_marks"`
	Attendance      float64 `json:"attendance" yaml:"attendance"`
}

// Total is the combined mark of both components.
func (e SemesterEntry) Total() int {
	return e.InternalMarks + e.UniversityMarks
}

// StudentInput is the validated payload submitted for prediction.
type StudentInput struct {
	Name       string          `json:"name" yaml:"name"`
	Age        int             `json:"age" yaml:"age"`
	Department Department      `json:"department" yaml:"department"`
	Semesters  []SemesterEntry `json:"semesters" yaml:"semesters"`
}

// SemesterField names one scalar field of a SemesterEntry.
type SemesterField int

const (
	FieldSemester SemesterField = iota
	FieldInternalMarks
	FieldUniversityMarks
	FieldAttendance
)

// Key is the wire name of the field, also used in error paths.
func (f SemesterField) Key() string {
	switch f {
	case FieldSemester:
		return "semester"
	case FieldInternalMarks:
		return "internal_marks"
	case FieldUniversityMarks:
		return "university_marks"
	case FieldAttendance:
		return "attendance"
	default:
		return ""
	}
}

// ParseSemesterField maps a wire name back to its field.
func ParseSemesterField(key string) (SemesterField, bool) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "semester":
		return FieldSemester, true
	case "internal_marks", "internal":
		return FieldInternalMarks, true
	case "university_marks", "university":
		return FieldUniversityMarks, true
	case "attendance":
		return FieldAttendance, true
	default:
		return 0, false
	}
}
