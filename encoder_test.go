package tmi

import (
	"bytes"
	"testing"
)

func TestEncoderMultipleJoins(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	if err := enc.Encode(JoinChannel("museun")); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := enc.Encode(JoinChannel("shaken_bot")); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := "JOIN #museun\r\nJOIN #shaken_bot\r\n"
	if buf.String() != want {
		t.Errorf("buf = %q, want %q", buf.String(), want)
	}
}

func TestAsyncEncoderFlushesEachCall(t *testing.T) {
	var buf bytes.Buffer
	enc := NewAsyncEncoder(&buf)
	if err := enc.Encode(Say("#museun", "one")); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got := buf.String(); got != "PRIVMSG #museun :one\r\n" {
		t.Fatalf("after first Encode, buf = %q", got)
	}
	if err := enc.Encode(Say("#museun", "two")); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := "PRIVMSG #museun :one\r\nPRIVMSG #museun :two\r\n"
	if got := buf.String(); got != want {
		t.Errorf("buf = %q, want %q", got, want)
	}
}
