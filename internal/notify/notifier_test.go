package notify

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type recordingNotifier struct {
	subjects []string
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, subject, _ string) error {
	n.subjects = append(n.subjects, subject)
	return n.err
}

func TestMulti_FansOutToAllChannels(t *testing.T) {
	logger := zerolog.New(io.Discard)
	a := &recordingNotifier{}
	b := &recordingNotifier{}

	m := NewMulti(&logger, a, b)
	err := m.Notify(context.Background(), "subject", "body")

	assert.NoError(t, err)
	assert.Equal(t, []string{"subject"}, a.subjects)
	assert.Equal(t, []string{"subject"}, b.subjects)
}

func TestMulti_ChannelFailureDoesNotStopOthers(t *testing.T) {
	logger := zerolog.New(io.Discard)
	failing := &recordingNotifier{err: errors.New("smtp down")}
	healthy := &recordingNotifier{}

	m := NewMulti(&logger, failing, healthy)
	err := m.Notify(context.Background(), "subject", "body")

	assert.NoError(t, err, "delivery failures must never propagate")
	assert.Len(t, healthy.subjects, 1)
}

func TestLogNotifier(t *testing.T) {
	logger := zerolog.New(io.Discard)
	n := LogNotifier{Logger: &logger}
	assert.NoError(t, n.Notify(context.Background(), "subject", "body"))
}
