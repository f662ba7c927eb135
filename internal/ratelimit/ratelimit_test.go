package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmit_BlocksAfterWindowFull(t *testing.T) {
	now := time.Now()
	l := New(Config{MaxRequestsPerMinute: 2, Now: func() time.Time { return now }})

	assert.True(t, l.Admit("example.com"))
	l.RecordRequest("example.com")
	assert.True(t, l.Admit("example.com"))
	l.RecordRequest("example.com")
	assert.False(t, l.Admit("example.com"))
}

func TestAdmit_WindowPrunesOldEntries(t *testing.T) {
	now := time.Now()
	l := New(Config{MaxRequestsPerMinute: 1, Now: func() time.Time { return now }})

	l.RecordRequest("example.com")
	assert.False(t, l.Admit("example.com"))

	now = now.Add(61 * time.Second)
	assert.True(t, l.Admit("example.com"))
}

func TestRecordError_HonorsRetryAfter(t *testing.T) {
	now := time.Now()
	l := New(Config{MaxRequestsPerMinute: 60, Now: func() time.Time { return now }})

	retryAfter := 10 * time.Second
	l.RecordError("example.com", &retryAfter)
	assert.False(t, l.Admit("example.com"))

	now = now.Add(11 * time.Second)
	assert.True(t, l.Admit("example.com"))
}

func TestRecordError_ExponentialBackoffCapsAtFiveMinutes(t *testing.T) {
	now := time.Now()
	l := New(Config{MaxRequestsPerMinute: 60, Now: func() time.Time { return now }})

	for i := 0; i < 20; i++ {
		l.RecordError("example.com", nil)
	}
	assert.False(t, l.Admit("example.com"))

	now = now.Add(5*time.Minute + time.Second)
	assert.True(t, l.Admit("example.com"))
}

func TestWaitFor_ReportsCannotProceedWhenWaitExceedsMax(t *testing.T) {
	now := time.Now()
	l := New(Config{MaxRequestsPerMinute: 60, Now: func() time.Time { return now }})

	retryAfter := time.Minute
	l.RecordError("example.com", &retryAfter)

	_, ok := l.WaitFor(context.Background(), "example.com", 10*time.Millisecond)
	assert.False(t, ok)
}

func TestWaitFor_SucceedsImmediatelyWhenAdmitted(t *testing.T) {
	l := New(Config{MaxRequestsPerMinute: 60})
	waited, ok := l.WaitFor(context.Background(), "example.com", time.Second)
	require.True(t, ok)
	assert.Zero(t, waited)
}
