package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalStringAndNumber(t *testing.T) {
	var d struct {
		A Duration `json:"a"`
		B Duration `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"30s","b":1000000000}`), &d))
	assert.Equal(t, 30*time.Second, d.A.Duration)
	assert.Equal(t, time.Second, d.B.Duration)

	require.Error(t, json.Unmarshal([]byte(`{"a":true}`), &d))
	require.Error(t, json.Unmarshal([]byte(`{"a":"soon"}`), &d))
}

func TestDuration_MarshalAsString(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 90 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(b))
}

func TestInclusiveDays(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		want int
	}{
		{"same instant", start, 1},
		{"two days later", start.AddDate(0, 0, 2), 3},
		{"partial day rounds up", start.Add(25 * time.Hour), 3},
		{"one hour", start.Add(time.Hour), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InclusiveDays(start, tt.end))
		})
	}
}

func TestInclusiveDays_AcrossDSTChange(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	fallBack := time.Date(2025, 11, 1, 0, 0, 0, 0, ny)
	end := fallBack.AddDate(0, 0, 2)
	assert.Equal(t, 3, InclusiveDays(fallBack, end))
	assert.Len(t, DaysInRange(fallBack, end), 3)

	springForward := time.Date(2025, 3, 8, 0, 0, 0, 0, ny)
	assert.Equal(t, 3, InclusiveDays(springForward, springForward.AddDate(0, 0, 2)))
	assert.Equal(t, 1, InclusiveDays(fallBack, fallBack))
}

func TestDaysInRange(t *testing.T) {
	start := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC)

	days := DaysInRange(start, end)
	require.Len(t, days, 3)
	assert.Equal(t, "2025-06-01", DayKey(days[0]))
	assert.Equal(t, "2025-06-03", DayKey(days[2]))
	assert.Nil(t, DaysInRange(end, start))
}

func TestSameDayAndStartOfDay(t *testing.T) {
	a := time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC)
	b := time.Date(2025, 6, 1, 0, 1, 0, 0, time.UTC)
	assert.True(t, SameDay(a, b))
	assert.False(t, SameDay(a, a.Add(2*time.Minute)))
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), StartOfDay(a))
	assert.Equal(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), AtClock(a, 9, 0))
}

func TestParseISO(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-06-01T09:00:00.000Z", time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)},
		{"2025-06-01T09:00:00Z", time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)},
		{"2025-06-01T09:30", time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)},
		{"2025-06-01 18:00", time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)},
		{"2025-06-02", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseISO(tt.in, time.UTC)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}

	_, err := ParseISO("not a date", time.UTC)
	require.ErrorIs(t, err, ErrUnparsableTime)
}
