package tmi

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuitSignalRaisesOnce(t *testing.T) {
	q := newQuitSignal()
	require.False(t, q.Raised())

	q.Raise(ErrCancelled)
	require.True(t, q.Raised())
	require.Equal(t, ErrCancelled, q.Cause())

	// A later Raise must not overwrite the first cause.
	q.Raise(ErrTimeout)
	require.Equal(t, ErrCancelled, q.Cause())

	select {
	case <-q.C():
	default:
		t.Fatal("C() should be closed after Raise")
	}
}

func TestQuitSignalConcurrentRaiseIsSafe(t *testing.T) {
	q := newQuitSignal()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Raise(ErrCancelled)
		}()
	}
	wg.Wait()
	require.True(t, q.Raised())
}

func TestChannelPreservesOrder(t *testing.T) {
	quit := newQuitSignal()
	sender, receiver := newChannel(8, quit)

	for i := 0; i < 5; i++ {
		require.NoError(t, sender.Send(Say("#museun", strconv.Itoa(i))))
	}

	for i := 0; i < 5; i++ {
		fr := <-receiver.Recv()
		require.Equal(t, privmsgCommand{channel: "#museun", body: strconv.Itoa(i)}, fr.cmd)
	}
}

func TestSendReturnsErrClosedAfterQuit(t *testing.T) {
	quit := newQuitSignal()
	sender, _ := newChannel(1, quit)
	quit.Raise(ErrCancelled)
	require.ErrorIs(t, sender.Send(Say("#museun", "hi")), ErrClosed)
}

func TestSendWaitReportsWriteOutcome(t *testing.T) {
	quit := newQuitSignal()
	sender, receiver := newChannel(1, quit)

	result := make(chan error, 1)
	go func() {
		result <- sender.SendWait(Say("#museun", "hi"))
	}()

	fr := <-receiver.Recv()
	require.NotNil(t, fr.done)
	fr.done <- nil

	require.NoError(t, <-result)
}
