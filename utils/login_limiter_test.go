package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterAllowsFirstAttempt(t *testing.T) {
	l := NewLoginLimiter()
	ok, wait := l.Allow()
	assert.True(t, ok)
	assert.Zero(t, wait)
}

func TestLimiterBacksOffAfterFailure(t *testing.T) {
	l := NewLoginLimiter()
	l.Failure()

	ok, wait := l.Allow()
	assert.False(t, ok)
	assert.Greater(t, wait, time.Duration(0))
	assert.LessOrEqual(t, wait, loginBackoffBase)
}

func TestLimiterDoublesAndCaps(t *testing.T) {
	l := NewLoginLimiter()
	for i := 0; i < 10; i++ {
		l.Failure()
	}
	_, wait := l.Allow()
	assert.LessOrEqual(t, wait, loginBackoffMax)
	assert.Greater(t, wait, loginBackoffMax-time.Second)
}

func TestLimiterResetsOnSuccess(t *testing.T) {
	l := NewLoginLimiter()
	l.Failure()
	l.Success()

	ok, _ := l.Allow()
	assert.True(t, ok)
}
