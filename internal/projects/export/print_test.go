package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmschedule/filmschedule-backend/internal/projects/domain"
)

func TestWritePrintHTML(t *testing.T) {
	p := exportProject()
	p.Notes = "Call sheet v2"
	p.Days[0].Position = 1
	p.Calltimes[0].Position = 0
	p.ColumnHeaders = &domain.ColumnHeaders{Time: "When", Scene: "Sc.", Location: "Where", Cast: "Who", Notes: "Info"}

	var buf bytes.Buffer
	require.NoError(t, WritePrintHTML(&buf, p, "/api/media/logo.png"))
	out := buf.String()

	assert.Contains(t, out, "<title>Feature</title>")
	assert.Contains(t, out, "Call sheet v2")
	assert.Contains(t, out, `<img src="/api/media/logo.png"`)
	assert.Contains(t, out, ">When<")
	assert.Contains(t, out, "13:00 - 14:00")
	assert.Contains(t, out, `colspan="5">LUNCH<`)
	assert.Contains(t, out, `colspan="2">Extras<`)

	// calltime block (position 0) comes before the day (position 1)
	assert.Less(t, strings.Index(out, ">Cast</div>"), strings.Index(out, ">01-06-2024</div>"))
}

func TestWritePrintHTML_EscapesContent(t *testing.T) {
	p := &domain.Project{
		Name: "<script>alert(1)</script>",
		Days: []domain.ScheduleDay{{Date: "01-06-2024", Rows: []domain.ScheduleRow{{Scene: "<b>x</b>"}}}},
	}

	var buf bytes.Buffer
	require.NoError(t, WritePrintHTML(&buf, p, ""))
	out := buf.String()

	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<b>x</b>")
	assert.NotContains(t, out, "<img")
	assert.Contains(t, out, ">Scene<", "default headers are used when the project has none")
}
