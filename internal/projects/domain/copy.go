package domain

// Normalize prepares a client payload for storage: nil lists become empty,
// nested entities without an id get one from newID, and untyped rows become
// item rows.
func (p *Project) Normalize(newID func() string) {
	if p.Days == nil {
		p.Days = []ScheduleDay{}
	}
	if p.Calltimes == nil {
		p.Calltimes = []Calltime{}
	}

	for i := range p.Days {
		day := &p.Days[i]
		if day.ID == "" {
			day.ID = newID()
		}
		if day.Rows == nil {
			day.Rows = []ScheduleRow{}
		}
		for j := range day.Rows {
			row := &day.Rows[j]
			if row.ID == "" {
				row.ID = newID()
			}
			if row.Type == "" {
				row.Type = RowTypeItem
			}
		}
	}

	for i := range p.Calltimes {
		ct := &p.Calltimes[i]
		if ct.ID == "" {
			ct.ID = newID()
		}
		if ct.Title == "" {
			ct.Title = "Calltime"
		}
		if ct.Rows == nil {
			ct.Rows = []CalltimeRow{}
		}
		for j := range ct.Rows {
			row := &ct.Rows[j]
			if row.ID == "" {
				row.ID = newID()
			}
			if row.Type == "" {
				row.Type = RowTypeItem
			}
		}
	}
}

// CloneWithNewIDs returns a deep copy of p in which every day, row, calltime
// and calltime row carries a fresh id. The project id is cleared; the copy
// shares no slices or pointers with p.
func (p *Project) CloneWithNewIDs(newID func() string) *Project {
	cp := *p
	cp.ID = ""

	if p.ColumnWidths != nil {
		w := *p.ColumnWidths
		cp.ColumnWidths = &w
	}
	if p.ColumnHeaders != nil {
		h := *p.ColumnHeaders
		cp.ColumnHeaders = &h
	}
	if p.CalltimeHeaders != nil {
		h := *p.CalltimeHeaders
		cp.CalltimeHeaders = &h
	}

	cp.Days = make([]ScheduleDay, len(p.Days))
	for i, day := range p.Days {
		day.ID = newID()
		rows := make([]ScheduleRow, len(day.Rows))
		for j, row := range day.Rows {
			row.ID = newID()
			rows[j] = row
		}
		day.Rows = rows
		cp.Days[i] = day
	}

	cp.Calltimes = make([]Calltime, len(p.Calltimes))
	for i, ct := range p.Calltimes {
		ct.ID = newID()
		if ct.Headers != nil {
			h := *ct.Headers
			ct.Headers = &h
		}
		rows := make([]CalltimeRow, len(ct.Rows))
		for j, row := range ct.Rows {
			row.ID = newID()
			rows[j] = row
		}
		ct.Rows = rows
		cp.Calltimes[i] = ct
	}

	return &cp
}
