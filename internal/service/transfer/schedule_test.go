package transfer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, min int) time.Time {
	return time.Date(2024, 3, 12, hour, min, 0, 0, time.UTC)
}

func TestParseSchedule_RejectsBadClock(t *testing.T) {
	_, err := ParseSchedule("6am", "22:00")
	assert.Error(t, err)

	_, err = ParseSchedule("06:00", "25:00")
	assert.Error(t, err)
}

func TestSchedule_OpeningDue(t *testing.T) {
	sched, err := ParseSchedule("06:00", "22:00")
	assert.NoError(t, err)

	// Before opening nothing is due, regardless of run history.
	assert.False(t, sched.OpeningDue(at(5, 59), time.Time{}))

	// At opening with no prior run the transfer is due.
	assert.True(t, sched.OpeningDue(at(6, 0), time.Time{}))
	assert.True(t, sched.OpeningDue(at(6, 1), time.Time{}))

	// A run after today's opening satisfies today.
	assert.False(t, sched.OpeningDue(at(6, 5), at(6, 1)))

	// Yesterday's run does not satisfy today.
	yesterday := at(6, 30).AddDate(0, 0, -1)
	assert.True(t, sched.OpeningDue(at(6, 0), yesterday))
}

func TestSchedule_WithinOperatingHours(t *testing.T) {
	sched, err := ParseSchedule("06:00", "22:00")
	assert.NoError(t, err)

	assert.False(t, sched.WithinOperatingHours(at(5, 30)))
	assert.True(t, sched.WithinOperatingHours(at(6, 0)))
	assert.True(t, sched.WithinOperatingHours(at(21, 59)))
	assert.False(t, sched.WithinOperatingHours(at(22, 0)))
}

func TestSchedule_OvernightOperatingHoursWrap(t *testing.T) {
	sched, err := ParseSchedule("18:00", "02:00")
	assert.NoError(t, err)

	assert.True(t, sched.WithinOperatingHours(at(23, 0)))
	assert.True(t, sched.WithinOperatingHours(at(1, 30)))
	assert.False(t, sched.WithinOperatingHours(at(12, 0)))
}
