package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressmapapp/pressmap-server/internal/wxr"
)

func watchdogService(t *testing.T, timeout time.Duration) *ImportService {
	t.Helper()
	return NewImportService(nil, nil, nil, timeout, testLogger())
}

func TestRunWithWatchdogWorkerResult(t *testing.T) {
	svc := watchdogService(t, time.Second)

	want := &wxr.Mapped{}
	fallbackRan := false

	got, err := svc.runWithWatchdog(context.Background(),
		func(progress func()) (*wxr.Mapped, error) {
			progress()
			return want, nil
		},
		func() (*wxr.Mapped, error) {
			fallbackRan = true
			return nil, nil
		},
	)

	require.NoError(t, err)
	assert.Same(t, want, got)
	assert.False(t, fallbackRan)
}

func TestRunWithWatchdogStalledWorkerFallsBack(t *testing.T) {
	svc := watchdogService(t, 20*time.Millisecond)

	block := make(chan struct{})
	t.Cleanup(func() { close(block) })
	want := &wxr.Mapped{}

	got, err := svc.runWithWatchdog(context.Background(),
		func(func()) (*wxr.Mapped, error) {
			<-block // never reports progress
			return nil, nil
		},
		func() (*wxr.Mapped, error) { return want, nil },
	)

	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestRunWithWatchdogProgressResetsTimer(t *testing.T) {
	svc := watchdogService(t, 50*time.Millisecond)

	want := &wxr.Mapped{}
	fallbackRan := false

	// Each ping lands well inside the window, but the worker's total
	// runtime exceeds it. Progress must keep the worker alive.
	got, err := svc.runWithWatchdog(context.Background(),
		func(progress func()) (*wxr.Mapped, error) {
			for i := 0; i < 10; i++ {
				time.Sleep(15 * time.Millisecond)
				progress()
			}
			return want, nil
		},
		func() (*wxr.Mapped, error) {
			fallbackRan = true
			return nil, nil
		},
	)

	require.NoError(t, err)
	assert.Same(t, want, got)
	assert.False(t, fallbackRan)
}

func TestRunWithWatchdogContextCancelled(t *testing.T) {
	svc := watchdogService(t, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	_, err := svc.runWithWatchdog(ctx,
		func(func()) (*wxr.Mapped, error) {
			<-block
			return nil, nil
		},
		func() (*wxr.Mapped, error) { return nil, nil },
	)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestProgressReaderReportsReads(t *testing.T) {
	pings := 0
	r := &progressReader{
		r:      strings.NewReader("<rss></rss>"),
		report: func() { pings++ },
	}

	buf := make([]byte, 4)
	total := 0
	for {
		n, err := r.Read(buf)
		total += n
		if err != nil {
			break
		}
	}

	assert.Equal(t, len("<rss></rss>"), total)
	assert.Positive(t, pings)
}
