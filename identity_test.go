package tmi

import "testing"

func TestIdentityAppliesGlobaluserstate(t *testing.T) {
	msg := decodeLine(t, "@badges=staff/1;color=#0000FF;display-name=dallas;emote-sets=0,33,50;"+
		"user-id=1337 :tmi.twitch.tv GLOBALUSERSTATE")
	g, ok := msg.(*Globaluserstate)
	if !ok {
		t.Fatalf("Decode() returned %T, want *Globaluserstate", msg)
	}

	id := &Identity{}
	id.applyGlobaluserstate(g)

	if id.UserID() != "1337" {
		t.Errorf("UserID() = %q, want 1337", id.UserID())
	}
	if id.DisplayName() != "dallas" {
		t.Errorf("DisplayName() = %q, want dallas", id.DisplayName())
	}
	if id.Color() != "#0000FF" {
		t.Errorf("Color() = %q, want #0000FF", id.Color())
	}
	if len(id.EmoteSets()) != 3 {
		t.Errorf("EmoteSets() = %v, want 3 entries", id.EmoteSets())
	}
}

func TestIdentityUserstateLeavesEmptyFieldsUntouched(t *testing.T) {
	id := &Identity{}
	id.applyGlobaluserstate(&Globaluserstate{DisplayName: "dallas", Color: "#0000FF"})

	// A USERSTATE with no color/display-name tags must not blank out the
	// values GLOBALUSERSTATE already set.
	msg := decodeLine(t, ":tmi.twitch.tv USERSTATE #dallas")
	u, ok := msg.(*Userstate)
	if !ok {
		t.Fatalf("Decode() returned %T, want *Userstate", msg)
	}
	id.applyUserstate(u)

	if id.DisplayName() != "dallas" {
		t.Errorf("DisplayName() = %q, want dallas to survive", id.DisplayName())
	}
	if id.Color() != "#0000FF" {
		t.Errorf("Color() = %q, want #0000FF to survive", id.Color())
	}
}

func TestIdentityBadgesReturnsDefensiveCopy(t *testing.T) {
	id := &Identity{}
	id.applyGlobaluserstate(&Globaluserstate{Badges: []Badge{{Name: "staff", Version: "1"}}})

	badges := id.Badges()
	badges[0].Name = "mutated"

	if id.Badges()[0].Name != "staff" {
		t.Error("mutating the returned slice should not affect Identity's internal state")
	}
}
