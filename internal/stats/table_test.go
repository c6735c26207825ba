package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Setting", "Shots", "Optimal"}
	rows := [][]string{
		{"5.5", "12", "75.0%"},
		{"6", "3", "0.0%"},
	}

	lines := formatTable(headers, rows, map[int]bool{1: true, 2: true})
	require.Len(t, lines, 3)
	assert.Equal(t, "Setting Shots Optimal", lines[0])
	assert.Equal(t, "5.5        12   75.0%", lines[1])
	assert.Equal(t, "6           3    0.0%", lines[2])
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Bean", "Shots"}, [][]string{{"浅煎り", "4"}, {"Kenya", "10"}}, map[int]bool{1: true})
	require.Len(t, lines, 3)
	assert.Equal(t, "浅煎り     4", lines[1])
	assert.Equal(t, "Kenya     10", lines[2])
}
