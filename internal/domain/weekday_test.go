package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekdays(t *testing.T) {
	days, err := ParseWeekdays("mwf")
	require.NoError(t, err)
	assert.True(t, days.Contains(time.Monday))
	assert.True(t, days.Contains(time.Wednesday))
	assert.True(t, days.Contains(time.Friday))
	assert.False(t, days.Contains(time.Sunday))

	_, err = ParseWeekdays("MXF")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestWeekdaySetString(t *testing.T) {
	days, err := ParseWeekdays("UTM")
	require.NoError(t, err)
	assert.Equal(t, "MTU", days.String())
}
