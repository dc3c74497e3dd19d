package filter

import (
	"testing"
	"time"

	"github.com/dyluth/mandelmovie/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func record(index, unit int, status ledger.FrameStatus, at int64) *ledger.FrameRecord {
	r := &ledger.FrameRecord{Index: index, Unit: unit, Status: status, RecordedAtMs: at}
	if status == ledger.FrameStatusFailed {
		r.Error = "boom"
	}
	return r
}

func TestCriteria_Matches(t *testing.T) {
	r := record(3, 1, ledger.FrameStatusRendered, 5000)

	tests := []struct {
		name     string
		criteria Criteria
		want     bool
	}{
		{"no filters", Criteria{}, true},
		{"since before", Criteria{SinceTimestampMs: 4000}, true},
		{"since after", Criteria{SinceTimestampMs: 6000}, false},
		{"until after", Criteria{UntilTimestampMs: 6000}, true},
		{"until before", Criteria{UntilTimestampMs: 4000}, false},
		{"status matches", Criteria{Status: ledger.FrameStatusRendered}, true},
		{"status differs", Criteria{Status: ledger.FrameStatusFailed}, false},
		{"unit matches", Criteria{Unit: intPtr(1)}, true},
		{"unit differs", Criteria{Unit: intPtr(0)}, false},
		{"all match", Criteria{SinceTimestampMs: 1, Status: ledger.FrameStatusRendered, Unit: intPtr(1)}, true},
		{"one of several fails", Criteria{Status: ledger.FrameStatusRendered, Unit: intPtr(2)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.criteria.Matches(r))
		})
	}
}

func TestCriteria_HasFilters(t *testing.T) {
	assert.False(t, (&Criteria{}).HasFilters())
	assert.True(t, (&Criteria{Unit: intPtr(0)}).HasFilters(), "unit 0 is a real filter")
	assert.True(t, (&Criteria{Status: ledger.FrameStatusFailed}).HasFilters())
	assert.True(t, (&Criteria{UntilTimestampMs: 1}).HasFilters())
}

func TestCriteria_Validate(t *testing.T) {
	assert.NoError(t, (&Criteria{}).Validate())
	assert.NoError(t, (&Criteria{Status: ledger.FrameStatusFailed, Unit: intPtr(0)}).Validate())

	err := (&Criteria{Status: "done"}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --status")

	err = (&Criteria{Unit: intPtr(-2)}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --unit")
}

func TestCriteria_Apply(t *testing.T) {
	records := []*ledger.FrameRecord{
		record(0, 0, ledger.FrameStatusRendered, 100),
		record(1, 0, ledger.FrameStatusFailed, 200),
		record(2, 1, ledger.FrameStatusRendered, 300),
		record(3, 1, ledger.FrameStatusFailed, 400),
	}

	t.Run("no filters returns input", func(t *testing.T) {
		assert.Equal(t, records, (&Criteria{}).Apply(records))
	})

	t.Run("keeps order", func(t *testing.T) {
		got := (&Criteria{Status: ledger.FrameStatusFailed}).Apply(records)
		require.Len(t, got, 2)
		assert.Equal(t, 1, got[0].Index)
		assert.Equal(t, 3, got[1].Index)
	})

	t.Run("nothing matches", func(t *testing.T) {
		got := (&Criteria{Unit: intPtr(7)}).Apply(records)
		assert.Empty(t, got)
	})
}

func TestParseTime(t *testing.T) {
	now := time.Date(2025, 10, 29, 14, 0, 0, 0, time.UTC)

	t.Run("duration is relative to now", func(t *testing.T) {
		ms, err := ParseTime("1h30m", now)
		require.NoError(t, err)
		assert.Equal(t, now.Add(-90*time.Minute).UnixMilli(), ms)
	})

	t.Run("RFC3339", func(t *testing.T) {
		ms, err := ParseTime("2025-10-29T13:00:00Z", now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 10, 29, 13, 0, 0, 0, time.UTC).UnixMilli(), ms)
	})

	t.Run("rejects bad specs", func(t *testing.T) {
		for _, spec := range []string{"", "yesterday", "-5m", "2025-10-29"} {
			_, err := ParseTime(spec, now)
			assert.Error(t, err, spec)
		}
	})
}

func TestCriteria_ParseRange(t *testing.T) {
	now := time.Date(2025, 10, 29, 14, 0, 0, 0, time.UTC)

	t.Run("open bounds", func(t *testing.T) {
		var c Criteria
		require.NoError(t, c.ParseRange("", "", now))
		assert.False(t, c.HasFilters())
	})

	t.Run("both bounds", func(t *testing.T) {
		var c Criteria
		require.NoError(t, c.ParseRange("2h", "1h", now))
		assert.Equal(t, now.Add(-2*time.Hour).UnixMilli(), c.SinceTimestampMs)
		assert.Equal(t, now.Add(-time.Hour).UnixMilli(), c.UntilTimestampMs)
	})

	t.Run("since after until", func(t *testing.T) {
		var c Criteria
		err := c.ParseRange("1h", "2h", now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--since must be before --until")
	})

	t.Run("names the bad flag", func(t *testing.T) {
		var c Criteria
		err := c.ParseRange("soon", "", now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid --since")

		err = c.ParseRange("", "later", now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid --until")
	})
}
