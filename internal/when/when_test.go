package when_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailforge/internal/when"
)

// 2024-01-01 is a Monday.
var now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestParse(t *testing.T) {
	t.Parallel()

	noon := time.Date(2024, 1, 3, 12, 30, 0, 0, time.UTC) // Wednesday
	fixed := time.Date(2030, 5, 6, 7, 8, 9, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		ref  time.Time
		want time.Time
	}{
		{"next week", "next week", now, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)},
		{"epoch int", 1700000000, now, time.Unix(1700000000, 0).UTC()},
		{"epoch int64", int64(1700000000), now, time.Unix(1700000000, 0).UTC()},
		{"epoch string", "@1700000000", now, time.Unix(1700000000, 0).UTC()},
		{"time value", fixed, now, fixed},
		{"duration value", 90 * time.Minute, now, now.Add(90 * time.Minute)},
		{"go duration string", "1h30m", now, now.Add(90 * time.Minute)},
		{"date only", "2024-02-10", now, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)},
		{"rfc3339", "2024-02-10T08:00:00Z", now, time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC)},
		{"plus days", "+2 days", noon, noon.AddDate(0, 0, 2)},
		{"attached unit", "+1day", noon, noon.AddDate(0, 0, 1)},
		{"minus year", "-1 year", noon, noon.AddDate(-1, 0, 0)},
		{"next month", "next month", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
		{"last month", "last month", noon, noon.AddDate(0, -1, 0)},
		{"next fortnight", "next fortnight", now, now.AddDate(0, 0, 14)},
		{"in weeks", "in 2 weeks", now, now.AddDate(0, 0, 14)},
		{"ago", "3 hours ago", noon, noon.Add(-3 * time.Hour)},
		{"tomorrow with clock", "tomorrow 9am", noon, time.Date(2024, 1, 4, 9, 0, 0, 0, time.UTC)},
		{"case insensitive", "Next Week", now, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)},
		{"surrounding space", "  next week ", now, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := when.Parse(tt.in, tt.ref)
			require.NoError(t, err)
			require.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	inputs := []any{
		"not-a-date",
		"",
		"   ",
		"next",
		"5 parsecs",
		"tomorrow banana",
		"send it next week please",
		"@abc",
		0,
		-5,
		time.Time{},
		nil,
		3.5,
	}

	for _, in := range inputs {
		_, err := when.Parse(in, now)
		require.ErrorIs(t, err, when.ErrInvalid, "input %#v", in)
	}
}
