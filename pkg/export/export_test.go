package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRender(t *testing.T) {
	exporter := NewCSVExporter()
	out, err := exporter.Render(Dataset{
		Headers: []string{"Tech", "Job#", "Completed On"},
		Rows: []map[string]string{
			{"Tech": "Sub 1", "Job#": "1001", "Completed On": "06/02/25"},
			{"Tech": "Sub 2", "Job#": "ABC-1", "Completed On": ""},
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Tech,Job#,Completed On", lines[0])
	assert.Equal(t, "Sub 1,1001,06/02/25", lines[1])
	assert.Equal(t, "Sub 2,ABC-1,", lines[2])
}

func TestCSVRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()
	_, err := exporter.Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	exporter := NewPDFExporter()
	out, err := exporter.Render(Dataset{
		Headers: []string{"Tech", "Job#"},
		Rows:    []map[string]string{{"Tech": "Sub 1", "Job#": "1001"}},
	}, "Filtered Jobs")
	require.NoError(t, err)
	assert.True(t, len(out) > 0)
	assert.Equal(t, "%PDF", string(out[:4]))
}
