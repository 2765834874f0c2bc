package records

import (
	"fmt"
	"math"
	"strings"
)

const (
	DefaultName = "Student"
	DefaultAge  = 18
)

// Draft is the in-progress record a teacher edits before submission.
//
// Entries keep the order the teacher created them in. occupied counts how
// many entries currently hold each semester number, so lookups of free
// numbers never scan the collection. Counts above one only appear while a
// teacher types through a duplicate; Validate reports them.
type Draft struct {
	Name       string
	Age        int
	Department Department

	entries  []SemesterEntry
	occupied [MaxSemesters + 1]int
}

// NewDraft returns a draft holding one zero-valued entry for semester 1.
func NewDraft() *Draft {
	d := &Draft{}
	d.Reset()
	return d
}

// FromInput builds a draft from a payload, typically one loaded from disk.
// The entry count must already be within 1..MaxSemesters.
func FromInput(in StudentInput) (*Draft, error) {
	if n := len(in.Semesters); n == 0 || n > MaxSemesters {
		return nil, FieldErrors{PathSemesters: fmt.Sprintf("Between 1 and %d semesters are required", MaxSemesters)}
	}
	d := &Draft{Name: in.Name, Age: in.Age, Department: in.Department}
	d.entries = make([]SemesterEntry, 0, len(in.Semesters))
	for _, s := range in.Semesters {
		d.entries = append(d.entries, s)
		d.occupy(s.Semester, 1)
	}
	return d, nil
}

// Reset returns the draft to its NewDraft state.
func (d *Draft) Reset() {
	*d = Draft{
		Name:       DefaultName,
		Age:        DefaultAge,
		Department: DepartmentCSE,
		entries:    []SemesterEntry{{Semester: MinSemester}},
	}
	d.occupy(MinSemester, 1)
}

// Clone returns an independent copy.
func (d *Draft) Clone() *Draft {
	c := *d
	c.entries = append([]SemesterEntry(nil), d.entries...)
	return &c
}

// Len is the number of semester entries.
func (d *Draft) Len() int {
	return len(d.entries)
}

// Semesters returns a copy of the entries in collection order.
func (d *Draft) Semesters() []SemesterEntry {
	return append([]SemesterEntry(nil), d.entries...)
}

// Entry returns the entry at index.
func (d *Draft) Entry(index int) (SemesterEntry, bool) {
	if index < 0 || index >= len(d.entries) {
		return SemesterEntry{}, false
	}
	return d.entries[index], true
}

// Used reports whether any entry holds semester number n.
func (d *Draft) Used(n int) bool {
	return inRange(n) && d.occupied[n] > 0
}

// AddSemester appends a zero-valued entry numbered with the lowest free
// semester. It reports false and leaves the draft untouched when the
// collection is full or every number is taken.
func (d *Draft) AddSemester() bool {
	if len(d.entries) >= MaxSemesters {
		return false
	}
	for n := MinSemester; n <= MaxSemesters; n++ {
		if d.occupied[n] == 0 {
			d.entries = append(d.entries, SemesterEntry{Semester: n})
			d.occupy(n, 1)
			return true
		}
	}
	return false
}

// RemoveSemester drops the entry at index. The last remaining entry cannot
// be removed.
func (d *Draft) RemoveSemester(index int) bool {
	if len(d.entries) <= 1 || index < 0 || index >= len(d.entries) {
		return false
	}
	d.occupy(d.entries[index].Semester, -1)
	d.entries = append(d.entries[:index], d.entries[index+1:]...)
	return true
}

// UpdateSemesterField replaces one field of the entry at index. Integer
// fields take the integral part of value. Nothing is validated here.
func (d *Draft) UpdateSemesterField(index int, field SemesterField, value float64) bool {
	if index < 0 || index >= len(d.entries) {
		return false
	}
	e := &d.entries[index]
	switch field {
	case FieldSemester:
		n := toInt(value)
		d.occupy(e.Semester, -1)
		e.Semester = n
		d.occupy(n, 1)
	case FieldInternalMarks:
		e.InternalMarks = toInt(value)
	case FieldUniversityMarks:
		e.UniversityMarks = toInt(value)
	case FieldAttendance:
		e.Attendance = value
	default:
		return false
	}
	return true
}

// AvailableSemesterOptions lists, ascending, the semester numbers no other
// entry uses. current is always included when it is a valid number.
func (d *Draft) AvailableSemesterOptions(current int) []int {
	out := make([]int, 0, MaxSemesters)
	for n := MinSemester; n <= MaxSemesters; n++ {
		if n == current || d.occupied[n] == 0 {
			out = append(out, n)
		}
	}
	return out
}

// Input reshapes the draft into a payload without validating it.
func (d *Draft) Input() StudentInput {
	return StudentInput{
		Name:       strings.TrimSpace(d.Name),
		Age:        d.Age,
		Department: d.Department,
		Semesters:  d.Semesters(),
	}
}

// Validate returns the submission payload, or FieldErrors describing every
// failing path.
func (d *Draft) Validate() (StudentInput, error) {
	in := d.Input()
	if errs := ValidateInput(in); errs != nil {
		return StudentInput{}, errs
	}
	return in, nil
}

// CanSubmit reports whether Validate would succeed.
func (d *Draft) CanSubmit() bool {
	_, err := d.Validate()
	return err == nil
}

func (d *Draft) occupy(n, delta int) {
	if inRange(n) {
		d.occupied[n] += delta
	}
}

func inRange(n int) bool {
	return n >= MinSemester && n <= MaxSemesters
}

func toInt(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	default:
		return int(math.Trunc(v))
	}
}
