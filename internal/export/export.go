// Package export flattens habits into relapse-level rows and serializes them
// as CSV or TSV.
package export

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/progress"
)

type Format string

const (
	CSV Format = "csv"
	TSV Format = "tsv"
)

// ParseFormat accepts "csv" or "tsv" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSV, TSV:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (expected csv or tsv)", s)
}

func (f Format) Ext() string { return string(f) }

// en-US renderings.
const (
	dateTimeLayout = "01/02/2006, 03:04 PM"
	dateLayout     = "01/02/2006"
	timeLayout     = "03:04 PM"
)

// Header is the fixed column order shared by both formats.
var Header = []string{
	"Addiction Name",
	"Icon",
	"Cost Per Engagement",
	"Cost Type",
	"Last Engaged",
	"Created At",
	"Goal Type",
	"Goal Value",
	"Goal Unit",
	"Current Streak (Days)",
	"Total Saved",
	"Relapse Date",
	"Relapse Time",
	"Relapse Note",
}

// Row is one exported line. The relapse fields are empty when HasRelapse is
// false.
type Row struct {
	Name              string
	Icon              string
	CostPerEngagement float64
	CostType          string
	LastEngaged       string
	CreatedAt         string
	GoalType          string
	GoalValue         float64
	GoalUnit          string
	CurrentStreak     int
	TotalSaved        float64

	HasRelapse  bool
	RelapseDate string
	RelapseTime string
	RelapseNote string
}

// Flatten emits one row per relapse event, or a single row for a habit with
// none. Order follows habits, then events, as given. Dates are rendered in
// now's location.
func Flatten(habits []models.Habit, now time.Time) []Row {
	loc := now.Location()
	rows := make([]Row, 0, len(habits))

	for _, h := range habits {
		base := Row{
			Name:              h.Name,
			Icon:              h.Icon,
			CostPerEngagement: finiteOrZero(h.Cost),
			CostType:          string(h.CostType),
			LastEngaged:       formatInstant(h.LastEngaged, loc, dateTimeLayout, constants.ExportInvalidDate),
			CreatedAt:         formatInstant(h.CreatedAt, loc, dateTimeLayout, constants.ExportInvalidDate),
			GoalType:          constants.ExportNotApplies,
			GoalUnit:          constants.ExportNotApplies,
			CurrentStreak:     progress.DaysSince(h.LastEngaged, now),
		}
		if h.Goal != nil {
			if h.Goal.Type != "" {
				base.GoalType = string(h.Goal.Type)
			}
			base.GoalValue = finiteOrZero(h.Goal.Value)
			if h.Goal.Unit != "" {
				base.GoalUnit = string(h.Goal.Unit)
			}
		}
		if h.CostType == models.CostMoney {
			base.TotalSaved = progress.TotalSaved(h, now)
		}

		if len(h.Notes) == 0 {
			rows = append(rows, base)
			continue
		}

		for _, ev := range h.Notes {
			row := base
			row.HasRelapse = true
			row.RelapseDate = formatInstant(ev.Date, loc, dateLayout, constants.ExportInvalidDate)
			row.RelapseTime = formatInstant(ev.Date, loc, timeLayout, constants.ExportInvalidTime)
			row.RelapseNote = ev.Text
			if strings.TrimSpace(row.RelapseNote) == "" {
				row.RelapseNote = constants.DefaultNoteText
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// ToDelimited serializes rows under Header. Lines are joined with "\n" and
// there is no trailing newline.
func ToDelimited(rows []Row, format Format) string {
	sep := ","
	if format == TSV {
		sep = "\t"
	}

	var b strings.Builder
	b.WriteString(strings.Join(Header, sep))
	for _, r := range rows {
		b.WriteByte('\n')
		if format == TSV {
			b.WriteString(strings.Join(tsvFields(r), sep))
		} else {
			b.WriteString(strings.Join(csvFields(r), sep))
		}
	}
	return b.String()
}

func csvFields(r Row) []string {
	opt := func(s string) string {
		if !r.HasRelapse || s == "" {
			return ""
		}
		return quote(s)
	}
	return []string{
		quote(r.Name),
		quote(r.Icon),
		number(r.CostPerEngagement),
		quote(r.CostType),
		quote(r.LastEngaged),
		quote(r.CreatedAt),
		quote(r.GoalType),
		number(r.GoalValue),
		quote(r.GoalUnit),
		strconv.Itoa(r.CurrentStreak),
		money(r.TotalSaved),
		opt(r.RelapseDate),
		opt(r.RelapseTime),
		opt(r.RelapseNote),
	}
}

func tsvFields(r Row) []string {
	return []string{
		tsvSafe(r.Name),
		tsvSafe(r.Icon),
		number(r.CostPerEngagement),
		tsvSafe(r.CostType),
		r.LastEngaged,
		r.CreatedAt,
		tsvSafe(r.GoalType),
		number(r.GoalValue),
		tsvSafe(r.GoalUnit),
		strconv.Itoa(r.CurrentStreak),
		money(r.TotalSaved),
		r.RelapseDate,
		r.RelapseTime,
		tsvSafe(r.RelapseNote),
	}
}

var scopeUnsafe = regexp.MustCompile(`[^a-z0-9]`)

// Filename builds "<scope>_export_<YYYY-MM-DD>.<ext>". An empty scope means
// the whole collection; otherwise scope is a habit name.
func Filename(scope string, format Format, now time.Time) string {
	if scope == "" {
		scope = constants.ExportBulkScope
	} else {
		scope = scopeUnsafe.ReplaceAllString(strings.ToLower(scope), "_")
	}
	return fmt.Sprintf("%s_export_%s.%s", scope, now.Format(constants.DateFormat), format.Ext())
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Tabs and line breaks would split a TSV record.
var tsvReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

func tsvSafe(s string) string {
	return tsvReplacer.Replace(s)
}

func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func money(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func formatInstant(t time.Time, loc *time.Location, layout, invalid string) string {
	if t.IsZero() {
		return invalid
	}
	return t.In(loc).Format(layout)
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
