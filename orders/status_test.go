package orders

import (
	"testing"

	"vanita/models"

	"github.com/stretchr/testify/assert"
)

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(models.StatusPreparing))
	assert.True(t, ValidStatus(models.StatusReady))
	assert.True(t, ValidStatus(models.StatusCompleted))
	assert.False(t, ValidStatus("delivered"))
	assert.False(t, ValidStatus(""))
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{models.StatusPreparing, models.StatusReady, true},
		{models.StatusReady, models.StatusCompleted, true},
		{models.StatusPreparing, models.StatusCompleted, false},
		{models.StatusReady, models.StatusPreparing, false},
		{models.StatusCompleted, models.StatusReady, false},
		{models.StatusCompleted, models.StatusPreparing, false},
		{models.StatusPreparing, models.StatusPreparing, true},
		{models.StatusCompleted, models.StatusCompleted, true},
		{"bogus", models.StatusReady, false},
		{models.StatusPreparing, "bogus", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
