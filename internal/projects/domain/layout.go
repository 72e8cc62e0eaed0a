package domain

// Layout is the set of display defaults filled into projects saved without
// their own configuration.
type Layout struct {
	ColumnWidths    ColumnWidths    `yaml:"column_widths"`
	ColumnHeaders   ColumnHeaders   `yaml:"column_headers"`
	CalltimeHeaders CalltimeHeaders `yaml:"calltime_headers"`
}

func DefaultColumnWidths() ColumnWidths {
	return ColumnWidths{
		Time:     15,
		TimeFrom: 8,
		TimeTo:   8,
		Scene:    15,
		Location: 23,
		Cast:     23,
		Notes:    24,
	}
}

func DefaultColumnHeaders() ColumnHeaders {
	return ColumnHeaders{
		Time:     "Time",
		TimeFrom: "Time From",
		TimeTo:   "Time To",
		Scene:    "Scene",
		Location: "Location",
		Cast:     "Cast",
		Notes:    "Notes",
	}
}

func DefaultCalltimeHeaders() CalltimeHeaders {
	return CalltimeHeaders{Time: "Time", Name: "Name"}
}

func DefaultLayout() Layout {
	return Layout{
		ColumnWidths:    DefaultColumnWidths(),
		ColumnHeaders:   DefaultColumnHeaders(),
		CalltimeHeaders: DefaultCalltimeHeaders(),
	}
}

// ApplyLayout fills missing display configuration from l. A missing block is
// copied whole; inside a supplied block, zero widths and blank labels fall
// back to the default for that column.
func (p *Project) ApplyLayout(l Layout) {
	if p.ColumnWidths == nil {
		w := l.ColumnWidths
		p.ColumnWidths = &w
	} else {
		fillInt(&p.ColumnWidths.Time, l.ColumnWidths.Time)
		fillInt(&p.ColumnWidths.TimeFrom, l.ColumnWidths.TimeFrom)
		fillInt(&p.ColumnWidths.TimeTo, l.ColumnWidths.TimeTo)
		fillInt(&p.ColumnWidths.Scene, l.ColumnWidths.Scene)
		fillInt(&p.ColumnWidths.Location, l.ColumnWidths.Location)
		fillInt(&p.ColumnWidths.Cast, l.ColumnWidths.Cast)
		fillInt(&p.ColumnWidths.Notes, l.ColumnWidths.Notes)
	}

	if p.ColumnHeaders == nil {
		h := l.ColumnHeaders
		p.ColumnHeaders = &h
	} else {
		fillString(&p.ColumnHeaders.Time, l.ColumnHeaders.Time)
		fillString(&p.ColumnHeaders.TimeFrom, l.ColumnHeaders.TimeFrom)
		fillString(&p.ColumnHeaders.TimeTo, l.ColumnHeaders.TimeTo)
		fillString(&p.ColumnHeaders.Scene, l.ColumnHeaders.Scene)
		fillString(&p.ColumnHeaders.Location, l.ColumnHeaders.Location)
		fillString(&p.ColumnHeaders.Cast, l.ColumnHeaders.Cast)
		fillString(&p.ColumnHeaders.Notes, l.ColumnHeaders.Notes)
	}

	if p.CalltimeHeaders == nil {
		h := l.CalltimeHeaders
		p.CalltimeHeaders = &h
	} else {
		fillString(&p.CalltimeHeaders.Time, l.CalltimeHeaders.Time)
		fillString(&p.CalltimeHeaders.Name, l.CalltimeHeaders.Name)
	}
}

func fillInt(dst *int, def int) {
	if *dst <= 0 {
		*dst = def
	}
}

func fillString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}
