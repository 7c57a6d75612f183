package auth_test

import (
	"context"
	"strings"
	"testing"
	"time"

	auth "github.com/arnlid/go-reportauth"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeActivityEvent(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("whitespace collapsed and fields capped", func(t *testing.T) {
		event := auth.NormalizeActivityEvent(auth.ActivityEvent{
			EventType:     auth.ActivityEventLoginFailure,
			Username:      "  ali\tce \n",
			SourceAddress: " 10.0.0.1 ",
			UserAgent:     strings.Repeat("agent ", 100),
			Detail:        "bad\npassword\t\tattempt",
		}, now)

		assert.Equal(t, "ali ce", event.Username)
		assert.Equal(t, "10.0.0.1", event.SourceAddress)
		assert.LessOrEqual(t, len(event.UserAgent), 256)
		assert.Equal(t, "bad password attempt", event.Detail)
	})

	t.Run("unknown kind coerced to failure", func(t *testing.T) {
		event := auth.NormalizeActivityEvent(auth.ActivityEvent{
			EventType: auth.ActivityEventType("password_change"),
		}, now)
		assert.Equal(t, auth.ActivityEventLoginFailure, event.EventType)
	})

	t.Run("success kind preserved", func(t *testing.T) {
		event := auth.NormalizeActivityEvent(auth.ActivityEvent{
			EventType: auth.ActivityEventLoginSuccess,
		}, now)
		assert.Equal(t, auth.ActivityEventLoginSuccess, event.EventType)
	})

	t.Run("zero occurred at stamped", func(t *testing.T) {
		event := auth.NormalizeActivityEvent(auth.ActivityEvent{
			EventType: auth.ActivityEventLoginSuccess,
		}, now)
		assert.Equal(t, now, event.OccurredAt)
	})

	t.Run("explicit occurred at kept", func(t *testing.T) {
		occurred := now.Add(-time.Hour)
		event := auth.NormalizeActivityEvent(auth.ActivityEvent{
			EventType:  auth.ActivityEventLoginSuccess,
			OccurredAt: occurred,
		}, now)
		assert.Equal(t, occurred, event.OccurredAt)
	})
}

func TestActivitySinkFunc(t *testing.T) {
	var got auth.ActivityEvent
	sink := auth.ActivitySinkFunc(func(_ context.Context, event auth.ActivityEvent) error {
		got = event
		return nil
	})

	err := sink.Record(context.Background(), auth.ActivityEvent{Username: "alice"})
	assert.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	var nilSink auth.ActivitySinkFunc
	assert.NoError(t, nilSink.Record(context.Background(), auth.ActivityEvent{}))
}
