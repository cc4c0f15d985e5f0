package tmi

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeServer reads lines sent by the runner under test and lets the test
// script respond to them, using an in-memory net.Pipe in place of a real
// socket.
type fakeServer struct {
	r *bufio.Reader
	w net.Conn
}

func newFakeServer(conn net.Conn) *fakeServer {
	return &fakeServer{r: bufio.NewReader(conn), w: conn}
}

func (s *fakeServer) readLine(t *testing.T) string {
	t.Helper()
	line, err := s.r.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimRight(line, "\r\n")
}

func (s *fakeServer) send(t *testing.T, line string) {
	t.Helper()
	_, err := s.w.Write([]byte(line + "\r\n"))
	require.NoError(t, err)
}

func runHandshake(t *testing.T, srv *fakeServer, login string) {
	t.Helper()
	require.True(t, strings.HasPrefix(srv.readLine(t), "PASS "))
	require.Equal(t, "NICK "+login, srv.readLine(t))

	var caps []string
	for i := 0; i < 3; i++ {
		line := srv.readLine(t)
		require.True(t, strings.HasPrefix(line, "CAP REQ :"))
		caps = append(caps, strings.TrimPrefix(line, "CAP REQ :"))
	}

	// All replies are sent only after every CAP REQ has been read: the
	// client doesn't start reading until its AsyncDecoder spins up right
	// after Run's handshake() returns, and handshake() only ever writes.
	for _, c := range caps {
		srv.send(t, "CAP * ACK :"+c)
	}
	srv.send(t, ":tmi.twitch.tv 001 "+login+" :Welcome, GLHF!")
	srv.send(t, "@badges=;color=;display-name="+login+";emote-sets=0;user-id=1337 :tmi.twitch.tv GLOBALUSERSTATE")
	srv.send(t, ":tmi.twitch.tv 376 "+login+" :>")
}

func TestRunnerHandshakeReachesRunningState(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()
	srv := newFakeServer(serverConn)

	config := UserConfig{Login: "tmigobot", Token: "oauth:abc"}
	runner, _ := NewAsyncRunner(clientConn, config, nil)

	go runHandshake(t, srv, "tmigobot")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return runner.State() == StateRunning
	}, time.Second, time.Millisecond)

	require.Equal(t, "1337", runner.Identity().UserID())

	cancel()
	<-done
}

func TestRunnerAnswersPingWithPong(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()
	srv := newFakeServer(serverConn)

	config := UserConfig{Login: "tmigobot", Token: "oauth:abc"}
	runner, _ := NewAsyncRunner(clientConn, config, nil)

	go runHandshake(t, srv, "tmigobot")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runner.Run(ctx)

	require.Eventually(t, func() bool {
		return runner.State() == StateRunning
	}, time.Second, time.Millisecond)

	srv.send(t, "PING :tmi.twitch.tv")
	require.Equal(t, "PONG :tmi.twitch.tv", srv.readLine(t))
}

func TestRunnerResolvesWaitForJoinOnOwnJoin(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()
	srv := newFakeServer(serverConn)

	config := UserConfig{Login: "tmigobot", Token: "oauth:abc"}
	runner, sender := NewAsyncRunner(clientConn, config, nil)

	go runHandshake(t, srv, "tmigobot")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runner.Run(ctx)

	require.Eventually(t, func() bool {
		return runner.State() == StateRunning
	}, time.Second, time.Millisecond)

	handle := runner.WaitForJoin("museun")
	require.NoError(t, sender.Send(JoinChannel("museun")))

	require.Equal(t, "JOIN #museun", srv.readLine(t))
	srv.send(t, ":tmigobot!tmigobot@tmigobot.tmi.twitch.tv JOIN #museun")

	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	require.NoError(t, handle.Wait(waitCtx))
}

func TestRunnerShutdownResolvesHandle(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()
	srv := newFakeServer(serverConn)

	config := UserConfig{Login: "tmigobot", Token: "oauth:abc"}
	runner, _ := NewAsyncRunner(clientConn, config, nil)

	go runHandshake(t, srv, "tmigobot")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return runner.State() == StateRunning
	}, time.Second, time.Millisecond)

	handle := runner.Shutdown()
	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	require.ErrorIs(t, handle.Wait(waitCtx), ErrCancelled)

	<-done
}

func TestRunnerDispatchesPrivmsgToRegisteredHandler(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()
	srv := newFakeServer(serverConn)

	config := UserConfig{Login: "tmigobot", Token: "oauth:abc"}
	runner, _ := NewAsyncRunner(clientConn, config, nil)

	received := make(chan *Privmsg, 1)
	runner.Dispatcher().OnPrivmsg(func(p *Privmsg) {
		received <- p
	})

	go runHandshake(t, srv, "tmigobot")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runner.Run(ctx)

	require.Eventually(t, func() bool {
		return runner.State() == StateRunning
	}, time.Second, time.Millisecond)

	srv.send(t, "@display-name=Museun;user-id=1337 :museun!museun@museun.tmi.twitch.tv PRIVMSG #museun :hello there")

	select {
	case p := <-received:
		require.Equal(t, "#museun", p.Channel)
		require.Equal(t, "hello there", p.Body)
		require.Equal(t, "Museun", p.DisplayName)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the dispatched Privmsg")
	}
}

func TestRunnerSurfacesMalformedLineWithoutTerminating(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()
	srv := newFakeServer(serverConn)

	config := UserConfig{Login: "tmigobot", Token: "oauth:abc"}
	runner, _ := NewAsyncRunner(clientConn, config, nil)

	go runHandshake(t, srv, "tmigobot")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runner.Run(ctx)

	require.Eventually(t, func() bool {
		return runner.State() == StateRunning
	}, time.Second, time.Millisecond)

	// A correctly-framed but unparseable line must not end the runner:
	// the next well-formed line still reaches the server round trip.
	srv.send(t, ":missing-command-after-prefix")
	srv.send(t, "PING :tmi.twitch.tv")
	require.Equal(t, "PONG :tmi.twitch.tv", srv.readLine(t))
}
