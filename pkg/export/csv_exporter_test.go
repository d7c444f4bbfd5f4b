package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	e := NewCSVExporter()
	data, err := e.Render(Dataset{
		Headers: []string{"Subject", "Start Date"},
		Rows:    [][]string{{"Standup", "2025-01-06"}, {"Retro, extended", "2025-01-10"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Subject,Start Date\nStandup,2025-01-06\n\"Retro, extended\",2025-01-10\n", string(data))
}

func TestCSVExporterRejectsRaggedRows(t *testing.T) {
	e := NewCSVExporter()
	_, err := e.Render(Dataset{
		Headers: []string{"Subject", "Start Date"},
		Rows:    [][]string{{"Standup"}},
	})
	assert.Error(t, err)
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	e := NewCSVExporter()
	_, err := e.Render(Dataset{})
	assert.Error(t, err)
}
