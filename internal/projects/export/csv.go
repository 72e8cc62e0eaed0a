package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/filmschedule/filmschedule-backend/internal/projects/domain"
)

var (
	scheduleHeader = []string{"Date", "Time", "Scene", "Location", "Cast", "Notes"}
	calltimeHeader = []string{"Time", "Name"}
)

// WriteCSV renders the schedule and calltimes of p. Each section is only
// written when the project has entries for it. Every schedule row carries
// its day's date; a text row puts its label in the third column.
func WriteCSV(w io.Writer, p *domain.Project) error {
	cw := csv.NewWriter(w)

	if len(p.Days) > 0 {
		if err := cw.Write([]string{"SCHEDULE"}); err != nil {
			return fmt.Errorf("csv schedule title: %w", err)
		}
		if err := cw.Write(scheduleHeader); err != nil {
			return fmt.Errorf("csv schedule header: %w", err)
		}

		for _, day := range p.Days {
			for _, row := range day.Rows {
				if err := cw.Write(scheduleRecord(day.Date, row)); err != nil {
					return fmt.Errorf("csv schedule row: %w", err)
				}
			}
		}

		if err := cw.Write([]string{}); err != nil {
			return fmt.Errorf("csv separator: %w", err)
		}
	}

	if len(p.Calltimes) > 0 {
		if err := cw.Write([]string{"CALLTIMES"}); err != nil {
			return fmt.Errorf("csv calltimes title: %w", err)
		}
		if err := cw.Write(calltimeHeader); err != nil {
			return fmt.Errorf("csv calltimes header: %w", err)
		}

		for _, ct := range p.Calltimes {
			for _, row := range ct.Rows {
				rec := []string{row.Time, row.Name}
				if row.Type == domain.RowTypeText {
					rec = []string{"", row.Name}
				}
				if err := cw.Write(rec); err != nil {
					return fmt.Errorf("csv calltime row: %w", err)
				}
			}
			if err := cw.Write([]string{}); err != nil {
				return fmt.Errorf("csv separator: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func scheduleRecord(date string, row domain.ScheduleRow) []string {
	if row.Type == domain.RowTypeText {
		return []string{date, "", row.Notes, "", "", ""}
	}
	return []string{date, row.DisplayTime(), row.Scene, row.Location, row.Cast, row.Notes}
}

// Filename is the attachment name for a project export with the given
// extension, stripped of characters that would break a header or a path.
func Filename(p *domain.Project, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '"', '/', '\\', '\r', '\n', ';':
			return -1
		}
		return r
	}, strings.TrimSpace(p.Name))
	if name == "" {
		name = "project"
	}
	return name + ext
}
