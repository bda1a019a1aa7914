package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name        string
		entries     []Entry
		callerID    uint
		wantCount   int
		wantSum     int
		wantAverage *float64
		wantCaller  *int
	}{
		{
			name:      "No ratings",
			entries:   nil,
			callerID:  1,
			wantCount: 0,
		},
		{
			name:        "Three ratings average to four",
			entries:     []Entry{{UserID: 1, Value: 5}, {UserID: 2, Value: 3}, {UserID: 3, Value: 4}},
			callerID:    2,
			wantCount:   3,
			wantSum:     12,
			wantAverage: ptrFloat(4),
			wantCaller:  ptrInt(3),
		},
		{
			name:        "Repeating decimal rounds to two places",
			entries:     []Entry{{UserID: 1, Value: 5}, {UserID: 2, Value: 4}, {UserID: 3, Value: 4}},
			wantCount:   3,
			wantSum:     13,
			wantAverage: ptrFloat(4.33),
		},
		{
			name:        "Two thirds rounds up",
			entries:     []Entry{{UserID: 1, Value: 1}, {UserID: 2, Value: 2}, {UserID: 3, Value: 2}},
			callerID:    9,
			wantCount:   3,
			wantSum:     5,
			wantAverage: ptrFloat(1.67),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(tt.entries, tt.callerID)

			assert.Equal(t, tt.wantCount, s.Count)
			assert.Equal(t, tt.wantSum, s.Sum)
			if tt.wantAverage == nil {
				assert.Nil(t, s.Average)
			} else {
				require.NotNil(t, s.Average)
				assert.InDelta(t, *tt.wantAverage, *s.Average, 1e-9)
			}
			if tt.wantCaller == nil {
				assert.Nil(t, s.CallerValue)
			} else {
				require.NotNil(t, s.CallerValue)
				assert.Equal(t, *tt.wantCaller, *s.CallerValue)
			}
		})
	}
}

func TestSummarize_ZeroCallerNeverMatches(t *testing.T) {
	s := Summarize([]Entry{{UserID: 0, Value: 5}}, 0)
	assert.Nil(t, s.CallerValue)
	assert.Equal(t, 1, s.Count)
}

func TestSummarize_AverageMatchesMean(t *testing.T) {
	values := []int{1, 2, 3, 4, 5, 5, 5, 2}
	entries := make([]Entry, len(values))
	sum := 0
	for i, v := range values {
		entries[i] = Entry{UserID: uint(i + 1), Value: v}
		sum += v
	}

	s := Summarize(entries, 0)
	require.NotNil(t, s.Average)
	assert.Equal(t, Round2(float64(sum)/float64(len(values))), *s.Average)
}

func TestSummarizeByStore(t *testing.T) {
	out := SummarizeByStore(map[uint][]Entry{
		10: {{UserID: 1, Value: 4}},
		11: {{UserID: 2, Value: 2}, {UserID: 1, Value: 5}},
	}, 1)

	require.Len(t, out, 2)
	assert.Equal(t, 4.0, *out[10].Average)
	assert.Equal(t, 3.5, *out[11].Average)
	assert.Equal(t, 5, *out[11].CallerValue)
	_, ok := out[12]
	assert.False(t, ok)
}

func TestValidValue(t *testing.T) {
	for v := -1; v <= 7; v++ {
		assert.Equal(t, v >= 1 && v <= 5, ValidValue(v), "value %d", v)
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 2.0, Round2(2))
	assert.Equal(t, 3.33, Round2(10.0/3.0))
	assert.Equal(t, 2.5, Round2(2.5))
}

func ptrFloat(f float64) *float64 { return &f }
func ptrInt(i int) *int           { return &i }
