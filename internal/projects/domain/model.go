package domain

// Row types shared by schedule rows and calltime rows. A text row is a
// section header; only its label field is rendered.
const (
	RowTypeItem = "item"
	RowTypeText = "text"
)

// Project is the root document persisted by the store. It is intentionally
// storage-agnostic and used across repository, service and HTTP layers.
type Project struct {
	ID              string           `json:"id"`
	Name            string           `json:"name" binding:"required"`
	Notes           string           `json:"notes"`
	LogoURL         string           `json:"logo_url"`
	ColumnWidths    *ColumnWidths    `json:"column_widths"`
	ColumnHeaders   *ColumnHeaders   `json:"column_headers"`
	CalltimeHeaders *CalltimeHeaders `json:"calltime_headers"`
	Days            []ScheduleDay    `json:"days" binding:"dive"`
	Calltimes       []Calltime       `json:"calltimes" binding:"dive"`
	CreatedAt       string           `json:"created_at"`
	UpdatedAt       string           `json:"updated_at"`
	Archived        bool             `json:"archived"`
}

type ScheduleDay struct {
	ID       string        `json:"id"`
	Date     string        `json:"date"`
	Rows     []ScheduleRow `json:"rows" binding:"dive"`
	Position int           `json:"position"`
}

type ScheduleRow struct {
	ID       string `json:"id"`
	Type     string `json:"type" binding:"omitempty,oneof=item text"`
	Time     string `json:"time"`
	TimeFrom string `json:"time_from,omitempty"`
	TimeTo   string `json:"time_to,omitempty"`
	Scene    string `json:"scene"`
	Location string `json:"location"`
	Cast     string `json:"cast"`
	Notes    string `json:"notes"`
}

type Calltime struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Headers  *CalltimeHeaders `json:"headers,omitempty"`
	Rows     []CalltimeRow    `json:"rows" binding:"dive"`
	Position int              `json:"position"`
}

type CalltimeRow struct {
	ID   string `json:"id"`
	Time string `json:"time"`
	Name string `json:"name"`
	Type string `json:"type" binding:"omitempty,oneof=item text"`
}

// ColumnWidths are percentages of the printable table width.
type ColumnWidths struct {
	Time     int `json:"time" yaml:"time"`
	TimeFrom int `json:"time_from" yaml:"time_from"`
	TimeTo   int `json:"time_to" yaml:"time_to"`
	Scene    int `json:"scene" yaml:"scene"`
	Location int `json:"location" yaml:"location"`
	Cast     int `json:"cast" yaml:"cast"`
	Notes    int `json:"notes" yaml:"notes"`
}

type ColumnHeaders struct {
	Time     string `json:"time" yaml:"time"`
	TimeFrom string `json:"time_from" yaml:"time_from"`
	TimeTo   string `json:"time_to" yaml:"time_to"`
	Scene    string `json:"scene" yaml:"scene"`
	Location string `json:"location" yaml:"location"`
	Cast     string `json:"cast" yaml:"cast"`
	Notes    string `json:"notes" yaml:"notes"`
}

type CalltimeHeaders struct {
	Time string `json:"time" yaml:"time"`
	Name string `json:"name" yaml:"name"`
}

// Summary is the lightweight list view of a project.
type Summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	Archived  bool   `json:"archived"`
	DayCount  int    `json:"day_count"`
}

func (p *Project) Summary() Summary {
	return Summary{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Archived:  p.Archived,
		DayCount:  len(p.Days),
	}
}

// DisplayTime is the single time cell for a schedule row: the explicit time
// when set, otherwise the from/to range.
func (r ScheduleRow) DisplayTime() string {
	if r.Time != "" {
		return r.Time
	}
	switch {
	case r.TimeFrom != "" && r.TimeTo != "":
		return r.TimeFrom + " - " + r.TimeTo
	case r.TimeFrom != "":
		return r.TimeFrom
	default:
		return r.TimeTo
	}
}
