package view

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeframeRange(t *testing.T) {
	// Wednesday
	now := time.Date(2026, 3, 18, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		tf    Timeframe
		start string
		end   string
	}{
		{TimeframeToday, "2026-03-18", "2026-03-18"},
		{TimeframeThisWeek, "2026-03-16", "2026-03-22"},
		{TimeframeThisMonth, "2026-03-01", "2026-03-31"},
		{TimeframeLastMonth, "2026-02-01", "2026-02-28"},
		{TimeframeThisYear, "2026-01-01", "2026-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.tf.String(), func(t *testing.T) {
			start, end := tt.tf.Range(now)

			assert.Equal(t, tt.start, FormatDate(start))
			assert.Equal(t, tt.end, FormatDate(end))
			assert.Equal(t, 0, start.Hour())
			assert.Equal(t, 23, end.Hour())
		})
	}
}

func TestTimeframeRange_SundayBelongsToPreviousWeek(t *testing.T) {
	start, end := TimeframeThisWeek.Range(time.Date(2026, 3, 22, 9, 0, 0, 0, time.UTC))

	assert.Equal(t, "2026-03-16", FormatDate(start))
	assert.Equal(t, "2026-03-22", FormatDate(end))
}

func TestTimeframePicker_SelectAll(t *testing.T) {
	p := NewTimeframePicker(TimeframeThisMonth, TimeframeAll)

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(TimeframeSelectedMsg)
	require.True(t, ok)
	assert.True(t, msg.All)

	start, end := msg.Bounds()
	assert.Nil(t, start)
	assert.Nil(t, end)
}

func TestTimeframePicker_CustomRejectsInvertedRange(t *testing.T) {
	p := NewTimeframePicker(TimeframeThisMonth)

	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, p.IsSelecting())

	p.startInput.SetValue("2026-03-10")
	p.endInput.SetValue("2026-03-01")

	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	require.Error(t, p.err)
	assert.Contains(t, p.err.Error(), "before start")
}
