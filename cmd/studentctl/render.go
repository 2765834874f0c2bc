package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"student-backend/internal/contract"
	"student-backend/internal/explain"
	"student-backend/internal/records"
)

const barWidth = 20

func predictionColor(prediction string) *color.Color {
	switch prediction {
	case "Good":
		return color.New(color.FgGreen, color.Bold)
	case "Average":
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func renderView(w io.Writer, recordID string, v explain.View) {
	predictionColor(v.Prediction).Fprintf(w, "%s", v.Prediction)
	fmt.Fprintf(w, " (%.1f%% confidence)\n", v.Confidence*100)
	fmt.Fprintf(w, "Model:  %s\n", v.ModelUsed)
	if recordID != "" {
		fmt.Fprintf(w, "Record: %s\n", recordID)
	}
	fmt.Fprintf(w, "Average %.2f%%, last semester %.2f%%, attendance %.2f%%\n\n",
		v.Summary.AvgPercentage, v.Summary.LastPercentage, v.Summary.AvgAttendance)
	fmt.Fprintln(w, v.Explanation)

	if len(v.Contributions) > 0 {
		fmt.Fprintln(w)
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Feature", "Value", "Contribution", "Weight"})
		table.SetAutoWrapText(false)
		for _, c := range v.Contributions {
			table.Append([]string{
				c.Feature.Label(),
				formatNumber(c.Value),
				fmt.Sprintf("%+.4f", c.Contribution.Contribution),
				bar(c.Magnitude, c.Contribution.Contribution < 0),
			})
		}
		table.Render()
	}

	if len(v.Series) > 0 {
		fmt.Fprintln(w)
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Semester", "Percentage", "Attendance", "Internal", "University"})
		for _, p := range v.Series {
			table.Append([]string{
				p.SemesterLabel,
				fmt.Sprintf("%.2f", p.Percentage),
				formatNumber(p.Attendance),
				strconv.Itoa(p.InternalMarks),
				strconv.Itoa(p.UniversityMarks),
			})
		}
		table.Render()
	}
}

func renderHistory(w io.Writer, rows []contract.HistoryRecord) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Created", "Name", "Dept", "Avg %", "Prediction", "Confidence", "Model", "Photo", "ID"})
	table.SetAutoWrapText(false)
	for _, r := range rows {
		photo := ""
		if r.HasPhoto {
			photo = "yes"
		}
		table.Append([]string{
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Name,
			string(r.Department),
			fmt.Sprintf("%.2f", r.AvgPercentage),
			r.Prediction,
			fmt.Sprintf("%.1f%%", r.Confidence*100),
			r.ModelUsed,
			photo,
			r.ID,
		})
	}
	table.Render()
}

func renderFieldErrors(w io.Writer, fe records.FieldErrors) {
	if len(fe) == 0 {
		return
	}
	red := color.New(color.FgRed)
	for _, path := range fe.Paths() {
		red.Fprintf(w, "  %s: %s\n", path, fe[path])
	}
}

// bar draws magnitude in [0,1] as a fixed-width block. Negative
// contributions use a lighter glyph.
func bar(magnitude float64, negative bool) string {
	if math.IsNaN(magnitude) || magnitude <= 0 {
		return ""
	}
	n := int(math.Round(math.Min(magnitude, 1) * barWidth))
	if n == 0 {
		n = 1
	}
	glyph := "█"
	if negative {
		glyph = "░"
	}
	return strings.Repeat(glyph, n)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
