package tmi

import "testing"

func TestUserConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		config  UserConfig
		wantErr error
	}{
		{"valid", UserConfig{Login: "museun", Token: "oauth:abc123"}, nil},
		{"anonymous", AnonymousConfig(), nil},
		{"missing oauth prefix", UserConfig{Login: "museun", Token: "abc123"}, ErrInvalidToken},
		{"uppercase login", UserConfig{Login: "Museun", Token: "oauth:abc123"}, ErrInvalidName},
		{"empty login", UserConfig{Login: "", Token: "oauth:abc123"}, ErrInvalidName},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.config.Validate()
			if err != c.wantErr {
				t.Errorf("Validate() = %v, want %v", err, c.wantErr)
			}
		})
	}
}

func TestUserConfigDefaultCapabilities(t *testing.T) {
	c := UserConfig{Login: "museun", Token: "oauth:abc"}
	caps := c.capabilities()
	if len(caps) != 3 {
		t.Fatalf("capabilities() = %v, want 3 defaults", caps)
	}
}

func TestUserConfigCustomCapabilities(t *testing.T) {
	c := UserConfig{Login: "museun", Token: "oauth:abc", Capabilities: []string{CapTags}}
	caps := c.capabilities()
	if len(caps) != 1 || caps[0] != CapTags {
		t.Fatalf("capabilities() = %v, want [%s]", caps, CapTags)
	}
}
