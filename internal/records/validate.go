package records

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidateInput applies the record rules to an already shaped payload.
// Bounds are checked first, then the per-semester total cap, then
// uniqueness of semester numbers. It returns nil when the payload is valid.
func ValidateInput(in StudentInput) FieldErrors {
	errs := FieldErrors{}

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		errs.add(PathName, "Name is required")
	case utf8.RuneCountInString(name) > NameMaxLen:
		errs.add(PathName, fmt.Sprintf("Name must be at most %d characters", NameMaxLen))
	}

	if in.Age < MinAge || in.Age > MaxAge {
		errs.add(PathAge, fmt.Sprintf("Age must be between %d and %d", MinAge, MaxAge))
	}

	if !in.Department.Valid() {
		errs.add(PathDepartment, "Department must be one of "+departmentList())
	}

	switch n := len(in.Semesters); {
	case n == 0:
		errs.add(PathSemesters, "At least one semester is required")
	case n > MaxSemesters:
		errs.add(PathSemesters, fmt.Sprintf("At most %d semesters are allowed", MaxSemesters))
	}

	for i, s := range in.Semesters {
		if s.Semester < MinSemester || s.Semester > MaxSemesters {
			errs.add(SemesterPath(i, FieldSemester), fmt.Sprintf("Semester must be between %d and %d", MinSemester, MaxSemesters))
		}
		if s.InternalMarks < 0 || s.InternalMarks > InternalMax {
			errs.add(SemesterPath(i, FieldInternalMarks), fmt.Sprintf("Internal marks must be between 0 and %d", InternalMax))
		}
		if s.UniversityMarks < 0 || s.UniversityMarks > UniversityMax {
			errs.add(SemesterPath(i, FieldUniversityMarks), fmt.Sprintf("University marks must be between 0 and %d", UniversityMax))
		}
		if !(s.Attendance >= MinAttendance && s.Attendance <= MaxAttendance) {
			errs.add(SemesterPath(i, FieldAttendance), "Attendance must be between 0 and 100")
		}
	}

	for i, s := range in.Semesters {
		if s.Total() > TotalMax {
			errs.add(SemesterPath(i, FieldInternalMarks), fmt.Sprintf("Internal + university marks must not exceed %d", TotalMax))
		}
	}

	seen := make(map[int]int, len(in.Semesters))
	for i, s := range in.Semesters {
		if first, ok := seen[s.Semester]; ok {
			errs.add(SemesterPath(i, FieldSemester), fmt.Sprintf("Semester %d is already used by entry %d", s.Semester, first+1))
			continue
		}
		seen[s.Semester] = i
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func departmentList() string {
	names := make([]string, len(Departments))
	for i, d := range Departments {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}
