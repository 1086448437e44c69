// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantStart string
		wantEnd   string
		wantErr   string
	}{
		{name: "single day", in: "2025-10-23", wantStart: "2025-10-23", wantEnd: "2025-10-23"},
		{name: "range", in: "2025-10-16:2025-10-18", wantStart: "2025-10-16", wantEnd: "2025-10-18"},
		{name: "range with spaces", in: " 2025-10-16 : 2025-10-18 ", wantStart: "2025-10-16", wantEnd: "2025-10-18"},
		{name: "same-day range", in: "2025-10-16:2025-10-16", wantStart: "2025-10-16", wantEnd: "2025-10-16"},
		{name: "empty", in: "", wantErr: "empty date target"},
		{name: "bad day", in: "2025-13-01", wantErr: "invalid date"},
		{name: "compact format", in: "20251016", wantErr: "invalid date"},
		{name: "three parts", in: "2025-10-16:2025-10-17:2025-10-18", wantErr: "invalid date range"},
		{name: "reversed", in: "2025-10-18:2025-10-16", wantErr: "end precedes start"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTarget(tt.in)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, Format(got.Start))
			assert.Equal(t, tt.wantEnd, Format(got.End))
		})
	}
}

func TestTargetDays(t *testing.T) {
	target, err := ParseTarget("2025-02-27:2025-03-02")
	require.NoError(t, err)

	var got []string
	for _, d := range target.Days() {
		got = append(got, Format(d))
	}
	assert.Equal(t, []string{"2025-02-27", "2025-02-28", "2025-03-01", "2025-03-02"}, got)
	assert.True(t, target.IsRange())
	assert.Equal(t, "2025-02-27 ~ 2025-03-02", target.String())
}

func TestTargetSingleDay(t *testing.T) {
	target, err := ParseTarget("2025-10-23")
	require.NoError(t, err)
	assert.Len(t, target.Days(), 1)
	assert.False(t, target.IsRange())
	assert.Equal(t, "2025-10-23", target.String())
}

func TestTargetContains(t *testing.T) {
	target, err := ParseTarget("2025-10-16:2025-10-18")
	require.NoError(t, err)

	assert.True(t, target.Contains(time.Date(2025, 10, 16, 0, 0, 0, 0, time.UTC)))
	assert.True(t, target.Contains(time.Date(2025, 10, 18, 23, 59, 59, 0, time.UTC)), "end day is inclusive")
	assert.False(t, target.Contains(time.Date(2025, 10, 19, 0, 0, 1, 0, time.UTC)))
	assert.False(t, target.Contains(time.Date(2025, 10, 15, 23, 59, 59, 0, time.UTC)))
	assert.False(t, target.Contains(time.Time{}))

	// A timestamp in another zone is judged by its UTC day.
	east := time.FixedZone("UTC+8", 8*3600)
	assert.True(t, target.Contains(time.Date(2025, 10, 19, 5, 0, 0, 0, east)))
}

func TestYesterday(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-02-28", Yesterday(now))

	// 01:00 on March 2nd in UTC+5 is still March 1st in UTC.
	east := time.Date(2026, 3, 2, 1, 0, 0, 0, time.FixedZone("UTC+5", 5*3600))
	assert.Equal(t, "2026-02-28", Yesterday(east))

	// 22:00 on March 1st in UTC-5 is already March 2nd in UTC.
	west := time.Date(2026, 3, 1, 22, 0, 0, 0, time.FixedZone("UTC-5", -5*3600))
	assert.Equal(t, "2026-03-01", Yesterday(west))
}
