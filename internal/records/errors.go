package records

import (
	"sort"
	"strconv"
	"strings"
)

// FieldErrors maps a dotted field path to the first rule it violated.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	paths := fe.Paths()
	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		parts = append(parts, p+": "+fe[p])
	}
	return "invalid student record: " + strings.Join(parts, "; ")
}

// Paths returns the failing paths in lexical order.
func (fe FieldErrors) Paths() []string {
	out := make([]string, 0, len(fe))
	for p := range fe {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// add keeps the first message recorded for a path.
func (fe FieldErrors) add(path, msg string) {
	if _, ok := fe[path]; ok {
		return
	}
	fe[path] = msg
}

// SemesterPath builds the error path of one semester field, e.g. semesters.2.internal_marks.
func SemesterPath(index int, field SemesterField) string {
	return "semesters." + strconv.Itoa(index) + "." + field.Key()
}

const (
	PathName       = "name"
	PathAge        = "age"
	PathDepartment = "department"
	PathSemesters  = "semesters"
)
