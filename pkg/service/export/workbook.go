package export

import (
	"bytes"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/xuri/excelize/v2"
)

const (
	SheetCapacity  = "Capacity"
	SheetAnalytics = "Analytics"
	SheetIssues    = "Issues"

	// ContentType is the MIME type of the generated workbook
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var ErrGenerateWorkbook = goerr.New("failed to generate workbook")

var capacityHeaders = []string{
	"Member", "Email", "Designation", "Location",
	"Business Hours", "Working Hours", "PTO Hours", "Holiday Hours",
	"Issues", "Original Estimate", "Time Spent", "Time Remaining", "Story Points",
	"Available Hours", "Remaining Bandwidth", "Utilization %", "Status",
}

var issueHeaders = []string{
	"Key", "Summary", "Status", "Priority", "Assignee",
	"Story Points", "Original Estimate", "Time Spent", "Time Remaining", "% Complete", "Due Date", "URL",
}

// Workbook renders team analytics as an XLSX file. issues may be nil, in
// which case the Issues sheet is omitted. The returned name is a suggested
// file name.
func Workbook(team *model.Team, analytics *model.TeamAnalytics, issues []*model.EnrichedIssue) (*bytes.Buffer, string, error) {
	if analytics == nil || analytics.Capacity == nil {
		return nil, "", goerr.Wrap(ErrGenerateWorkbook, "capacity is required", goerr.V("team_id", team.ID))
	}

	f := excelize.NewFile()
	defer f.Close()

	styles, err := newStyles(f)
	if err != nil {
		return nil, "", err
	}

	idx, err := f.NewSheet(SheetCapacity)
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to create sheet", goerr.V("sheet", SheetCapacity))
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", goerr.Wrap(err, "failed to delete default sheet")
	}

	if err := writeCapacity(f, styles, team, analytics.Capacity); err != nil {
		return nil, "", err
	}
	if err := writeAnalytics(f, styles, analytics); err != nil {
		return nil, "", err
	}
	if issues != nil {
		if err := writeIssues(f, styles, issues); err != nil {
			return nil, "", err
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", goerr.Wrap(ErrGenerateWorkbook, "failed to write workbook", goerr.V("error", err.Error()))
	}

	name := fmt.Sprintf("capacity_%s_%s_%s.xlsx", team.ID,
		analytics.Capacity.Start.Format(model.DateLayout),
		analytics.Capacity.End.Format(model.DateLayout))
	return buf, name, nil
}

type styles struct {
	header int
	title  int
	total  int
}

func newStyles(f *excelize.File) (*styles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create header style")
	}
	title, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create title style")
	}
	total, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create total style")
	}
	return &styles{header: header, title: title, total: total}, nil
}

// sheetWriter keeps the first error so that long runs of cell writes stay
// readable
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *sheetWriter) set(col, row int, v any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellValue(w.sheet, cell, v)
}

func (w *sheetWriter) row(row int, values ...any) {
	for i, v := range values {
		w.set(i+1, row, v)
	}
}

func (w *sheetWriter) style(fromCol, toCol, row, style int) {
	if w.err != nil {
		return
	}
	from, err := excelize.CoordinatesToCellName(fromCol, row)
	if err != nil {
		w.err = err
		return
	}
	to, err := excelize.CoordinatesToCellName(toCol, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(w.sheet, from, to, style)
}

func (w *sheetWriter) width(fromCol, toCol int, width float64) {
	if w.err != nil {
		return
	}
	from, err := excelize.ColumnNumberToName(fromCol)
	if err != nil {
		w.err = err
		return
	}
	to, err := excelize.ColumnNumberToName(toCol)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetColWidth(w.sheet, from, to, width)
}

func (w *sheetWriter) header(row int, headers []string, style int) {
	for i, h := range headers {
		w.set(i+1, row, h)
	}
	w.style(1, len(headers), row, style)
}

func (w *sheetWriter) done() error {
	if w.err != nil {
		return goerr.Wrap(ErrGenerateWorkbook, "failed to write sheet",
			goerr.V("sheet", w.sheet),
			goerr.V("error", w.err.Error()))
	}
	return nil
}

func writeCapacity(f *excelize.File, st *styles, team *model.Team, c *model.TeamCapacity) error {
	w := &sheetWriter{f: f, sheet: SheetCapacity}

	w.set(1, 1, fmt.Sprintf("%s capacity %s to %s", team.Name, c.Start.Format(model.DateLayout), c.End.Format(model.DateLayout)))
	w.style(1, 1, 1, st.title)
	w.header(3, capacityHeaders, st.header)
	w.width(1, 1, 22)
	w.width(2, 2, 28)
	w.width(3, 4, 16)
	w.width(5, len(capacityHeaders), 14)

	row := 4
	for _, m := range c.Members {
		w.row(row,
			m.Name, m.Email, m.Designation, m.Location,
			m.BusinessHours, m.WorkingHours, m.PTOHours, m.HolidayHours,
			m.IssueCount, m.OriginalEstimate, m.TimeSpent, m.TimeRemaining, m.StoryPoints,
			m.AvailableHours, m.RemainingBandwidth, m.UtilizationPercentage, m.Status.String(),
		)
		row++
	}

	t := c.Totals
	w.row(row,
		"Total", "", "", "",
		"", t.WorkingHours, t.PTOHours, t.HolidayHours,
		"", t.OriginalEstimate, t.TimeSpent, t.TimeRemaining, t.StoryPoints,
		t.AvailableHours, "", "", "",
	)
	w.style(1, len(capacityHeaders), row, st.total)

	return w.done()
}

func writeAnalytics(f *excelize.File, st *styles, a *model.TeamAnalytics) error {
	if _, err := f.NewSheet(SheetAnalytics); err != nil {
		return goerr.Wrap(err, "failed to create sheet", goerr.V("sheet", SheetAnalytics))
	}
	w := &sheetWriter{f: f, sheet: SheetAnalytics}
	w.width(1, 1, 26)
	w.width(2, 2, 18)
	w.width(3, 3, 14)
	w.width(4, 4, 70)

	s := a.Summary
	w.header(1, []string{"Metric", "Value"}, st.header)
	row := 2
	for _, kv := range []struct {
		name  string
		value any
	}{
		{"Total issues", s.TotalIssues},
		{"Total story points", s.TotalStoryPoints},
		{"Total original estimate", s.TotalOriginalEstimate},
		{"Total time spent", s.TotalTimeSpent},
		{"Total time remaining", s.TotalTimeRemaining},
		{"Total working hours", s.TotalWorkingHours},
		{"Total available hours", s.TotalAvailableHours},
		{"Total PTO hours", s.TotalPTOHours},
		{"Average utilization %", s.AverageUtilization},
		{"Team capacity used %", s.TeamCapacityUsed},
		{"Burn rate (points/hour)", a.BurnRate.Rate},
		{"Estimate accuracy %", a.BurnRate.EstimateAccuracy},
		{"Blocked %", a.StatusBreakdown.BlockedPercentage()},
	} {
		w.row(row, kv.name, kv.value)
		row++
	}

	row++
	w.header(row, []string{"Member", "Issue", "Severity", "Utilization %"}, st.header)
	row++
	for _, b := range a.Bottlenecks {
		w.row(row, b.Name, string(b.Issue), b.Severity.String(), b.Utilization)
		row++
	}

	row++
	w.header(row, []string{"Risk", "Severity", "", "Message"}, st.header)
	row++
	for _, r := range a.Risks {
		w.row(row, string(r.Type), r.Severity.String(), "", r.Message)
		row++
	}

	row++
	w.header(row, []string{"Suggestion", "Severity", "Feasibility", "Message"}, st.header)
	row++
	for _, x := range a.Suggestions {
		w.row(row, string(x.Type), x.Severity.String(), string(x.Feasibility), x.Message)
		row++
	}

	return w.done()
}

func writeIssues(f *excelize.File, st *styles, issues []*model.EnrichedIssue) error {
	if _, err := f.NewSheet(SheetIssues); err != nil {
		return goerr.Wrap(err, "failed to create sheet", goerr.V("sheet", SheetIssues))
	}
	w := &sheetWriter{f: f, sheet: SheetIssues}
	w.header(1, issueHeaders, st.header)
	w.width(1, 1, 12)
	w.width(2, 2, 50)
	w.width(3, 5, 16)
	w.width(6, 11, 12)
	w.width(12, 12, 40)

	for i, is := range issues {
		due := ""
		if is.DueDate != nil {
			due = is.DueDate.Format(model.DateLayout)
		}
		w.row(i+2,
			is.Key, is.Summary, is.Status, is.Priority, is.AssigneeName,
			is.StoryPoints, is.OriginalEstimateHours, is.TimeSpentHours, is.TimeRemainingHours,
			is.PercentComplete, due, is.URL,
		)
	}

	return w.done()
}
