package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var scheduleEpoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestNewSyncSchedule(t *testing.T) {
	s := NewSyncSchedule(time.Hour, scheduleEpoch)

	assert.Equal(t, time.Hour, s.Interval)
	assert.Equal(t, scheduleEpoch.Add(time.Hour), s.NextRun)
	assert.False(t, s.Due(scheduleEpoch))
	assert.True(t, s.Due(scheduleEpoch.Add(time.Hour)), "due exactly at NextRun")
	assert.True(t, s.Due(scheduleEpoch.Add(2*time.Hour)))
}

func TestSyncSchedule_Retime(t *testing.T) {
	s := NewSyncSchedule(time.Hour, scheduleEpoch)

	s.Retime(time.Hour, scheduleEpoch.Add(30*time.Minute))
	assert.Equal(t, scheduleEpoch.Add(time.Hour), s.NextRun, "same interval keeps the next run")

	later := scheduleEpoch.Add(30 * time.Minute)
	s.Retime(10*time.Minute, later)
	assert.Equal(t, 10*time.Minute, s.Interval)
	assert.Equal(t, later.Add(10*time.Minute), s.NextRun)
}

func TestSyncSchedule_RecordSuccess(t *testing.T) {
	s := NewSyncSchedule(time.Hour, scheduleEpoch)
	s.LastError = "origin down"
	ended := scheduleEpoch.Add(time.Minute)

	s.Record(&SyncReport{RunID: "run-1"}, nil, scheduleEpoch, ended)

	assert.Equal(t, "run-1", s.LastRunID)
	assert.Equal(t, scheduleEpoch, s.LastRun)
	assert.Equal(t, ended, s.LastSuccess)
	assert.Equal(t, ended.Add(time.Hour), s.NextRun)
	assert.Empty(t, s.LastError)
}

func TestSyncSchedule_RecordFailure(t *testing.T) {
	s := NewSyncSchedule(time.Hour, scheduleEpoch)
	s.LastRunID = "run-0"
	s.LastSuccess = scheduleEpoch
	ended := scheduleEpoch.Add(time.Minute)

	t.Run("aborted run keeps its report", func(t *testing.T) {
		s.Record(&SyncReport{RunID: "run-1", Aborted: true}, errors.New("sync aborted"), scheduleEpoch, ended)

		assert.Equal(t, "run-1", s.LastRunID)
		assert.Equal(t, "sync aborted", s.LastError)
		assert.Equal(t, scheduleEpoch, s.LastSuccess, "last success is unchanged")
	})

	t.Run("run without report clears the link", func(t *testing.T) {
		s.Record(nil, ErrSyncInProgress, scheduleEpoch, ended)

		assert.Empty(t, s.LastRunID)
		assert.Equal(t, ErrSyncInProgress.Error(), s.LastError)
		assert.Equal(t, ended.Add(time.Hour), s.NextRun)
	})
}

func TestSchedulerConfigFor(t *testing.T) {
	cfg := SchedulerConfigFor(15 * time.Minute)
	assert.True(t, cfg.Active())
	assert.Equal(t, 15*time.Minute, cfg.Interval)

	assert.False(t, SchedulerConfigFor(0).Active())
	assert.False(t, SchedulerConfig{Enabled: false, Interval: time.Hour}.Active())
}
