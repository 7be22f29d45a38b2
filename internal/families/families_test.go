package families

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"ac-2", "Access Control"},
		{"AC-2.1", "Access Control"},
		{"sr-3", "Supply Chain Risk Management"},
		{"xy-1", "XY"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, Title(tt.id))
		})
	}
}

func TestBreakdown(t *testing.T) {
	covered := map[string]bool{"ac-1": true, "au-2": true, "au-3": true}
	ids := []string{"au-1", "ac-1", "ac-2", "au-2", "au-3"}

	got := Breakdown(ids, func(id string) bool { return covered[id] })
	require.Len(t, got, 2)

	assert.Equal(t, "ac", got[0].Family)
	assert.Equal(t, 2, got[0].Total)
	assert.Equal(t, 1, got[0].Covered)
	assert.Equal(t, "50.0%", got[0].Percentage.String())
	assert.Equal(t, []string{"ac-2"}, got[0].Uncovered)

	assert.Equal(t, "Audit and Accountability", got[1].Title)
	assert.Equal(t, 3, got[1].Total)
	assert.Equal(t, []string{"au-1"}, got[1].Uncovered)

	f, ok := Find(got, "access control")
	require.True(t, ok)
	assert.Equal(t, "ac", f.Family)
	_, ok = Find(got, "sc")
	assert.False(t, ok)
}

func TestBreakdownEmpty(t *testing.T) {
	assert.Empty(t, Breakdown(nil, func(string) bool { return true }))
}
