package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWorker struct {
	name     string
	startErr error
	events   *[]string
}

func (f *fakeWorker) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	*f.events = append(*f.events, "start:"+f.name)
	return nil
}

func (f *fakeWorker) Stop() {
	*f.events = append(*f.events, "stop:"+f.name)
}

func (f *fakeWorker) Name() string { return f.name }

func TestManagerStartsInOrderStopsInReverse(t *testing.T) {
	var events []string
	m := NewManager(zap.NewNop())
	m.Register(
		&fakeWorker{name: "subscriber", events: &events},
		&fakeWorker{name: "server", events: &events},
	)

	require.NoError(t, m.StartAll(context.Background()))
	m.StopAll()

	assert.Equal(t, []string{
		"start:subscriber", "start:server",
		"stop:server", "stop:subscriber",
	}, events)
}

func TestManagerStartAllAbortsOnFailure(t *testing.T) {
	var events []string
	boom := errors.New("bind failed")
	m := NewManager(zap.NewNop())
	m.Register(
		&fakeWorker{name: "first", events: &events},
		&fakeWorker{name: "second", startErr: boom, events: &events},
		&fakeWorker{name: "third", events: &events},
	)

	err := m.StartAll(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"start:first"}, events)
}
