package tmi

import (
	"bytes"
	"strings"
	"testing"
)

func encodeString(t *testing.T, e Encodable) string {
	t.Helper()
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(e); err != nil {
		t.Fatalf("Encode: unexpected error: %v", err)
	}
	return buf.String()
}

func TestNormalizeChannel(t *testing.T) {
	cases := map[string]string{
		"museun":    "#museun",
		"#museun":   "#museun",
		"MUSEUN":    "#museun",
		" #Museun ": "#museun",
	}
	for in, want := range cases {
		if got := normalizeChannel(in); got != want {
			t.Errorf("normalizeChannel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestJoinChannelEncoding(t *testing.T) {
	got := encodeString(t, JoinChannel("museun"))
	if got != "JOIN #museun\r\n" {
		t.Errorf("JoinChannel encoded as %q", got)
	}
}

func TestSayEncoding(t *testing.T) {
	got := encodeString(t, Say("#museun", "hello world"))
	if got != "PRIVMSG #museun :hello world\r\n" {
		t.Errorf("Say encoded as %q", got)
	}
}

func TestModEncodesAsPrivmsgSlashCommand(t *testing.T) {
	got := encodeString(t, Mod("#museun", "shaken_bot"))
	if got != "PRIVMSG #museun :/mod shaken_bot\r\n" {
		t.Errorf("Mod encoded as %q", got)
	}
}

func TestTimeoutOmitsEmptyArgs(t *testing.T) {
	got := encodeString(t, Timeout("#museun", "shaken_bot", "", ""))
	if got != "PRIVMSG #museun :/timeout shaken_bot\r\n" {
		t.Errorf("Timeout encoded as %q", got)
	}
	got = encodeString(t, Timeout("#museun", "shaken_bot", "10m", "spam"))
	if got != "PRIVMSG #museun :/timeout shaken_bot 10m spam\r\n" {
		t.Errorf("Timeout encoded as %q", got)
	}
}

func TestJoinAndPrivmsgAreRateLimited(t *testing.T) {
	if _, ok := JoinChannel("museun").(rateLimited); !ok {
		t.Error("JoinChannel's Encodable does not implement rateLimited")
	}
	if _, ok := Say("museun", "hi").(rateLimited); !ok {
		t.Error("Say's Encodable does not implement rateLimited")
	}
	if _, ok := Mod("museun", "x").(rateLimited); !ok {
		t.Error("Mod's Encodable does not implement rateLimited (slash commands are PRIVMSGs on the wire)")
	}
	if _, ok := PartChannel("museun").(rateLimited); ok {
		t.Error("PartChannel should not be rate-limited")
	}
}

func TestReplyToAddsClientTag(t *testing.T) {
	got := encodeString(t, ReplyTo("#museun", "abc-123", "hi"))
	if !strings.HasPrefix(got, "@reply-parent-msg-id=abc-123 PRIVMSG #museun :hi\r\n") {
		t.Errorf("ReplyTo encoded as %q", got)
	}
}
