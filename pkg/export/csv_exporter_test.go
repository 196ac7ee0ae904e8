package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderOrdersColumnsByHeader(t *testing.T) {
	exporter := NewCSVExporter()
	payload, err := exporter.Render(Dataset{
		Headers: []string{"Date", "Class", "Room"},
		Rows: []map[string]string{
			{"Room": "R1", "Date": "2026-09-07", "Class": "class-1"},
			{"Date": "2026-09-14", "Class": "class-1"},
		},
	})
	require.NoError(t, err)

	body := strings.TrimPrefix(string(payload), "\xef\xbb\xbf")
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Class,Room", strings.TrimSpace(lines[0]))
	assert.Equal(t, "2026-09-07,class-1,R1", strings.TrimSpace(lines[1]))
	assert.Equal(t, "2026-09-14,class-1,", strings.TrimSpace(lines[2]))
}

func TestCSVRenderBOMToggle(t *testing.T) {
	withBOM, err := NewCSVExporter().Render(Dataset{Headers: []string{"Date"}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(withBOM), "\xef\xbb\xbf"))

	bare, err := (&CSVExporter{}).Render(Dataset{Headers: []string{"Date"}})
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(string(bare), "\xef\xbb\xbf"))
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFRenderProducesDocument(t *testing.T) {
	exporter := NewPDFExporter()
	payload, err := exporter.Render(Dataset{
		Title:   "Lesson Schedule",
		Headers: []string{"Date", "Class"},
		Rows:    []map[string]string{{"Date": "2026-09-07", "Class": "class-1"}},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}
