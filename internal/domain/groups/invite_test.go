package groups

import "testing"

func TestInviteCodeRoundTrip(t *testing.T) {
	coder, err := NewInviteCoder("test-salt")
	if err != nil {
		t.Fatalf("NewInviteCoder: %v", err)
	}

	for _, id := range []int64{1, 42, 99999, 1 << 40} {
		code, err := coder.Encode(id)
		if err != nil {
			t.Fatalf("Encode(%d): %v", id, err)
		}
		if len(code) < 8 {
			t.Errorf("Encode(%d) = %q, want at least 8 characters", id, code)
		}

		got, err := coder.Decode(code)
		if err != nil {
			t.Fatalf("Decode(%q): %v", code, err)
		}
		if got != id {
			t.Errorf("Decode(Encode(%d)) = %d", id, got)
		}
	}
}

func TestInviteCodeIsStable(t *testing.T) {
	coder, err := NewInviteCoder("test-salt")
	if err != nil {
		t.Fatalf("NewInviteCoder: %v", err)
	}

	a, _ := coder.Encode(7)
	b, _ := coder.Encode(7)
	if a != b {
		t.Errorf("same id encoded differently: %q vs %q", a, b)
	}
}

func TestInviteCodeDependsOnSalt(t *testing.T) {
	c1, _ := NewInviteCoder("salt-one")
	c2, _ := NewInviteCoder("salt-two")

	a, _ := c1.Encode(7)
	b, _ := c2.Encode(7)
	if a == b {
		t.Error("different salts produced identical codes")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	coder, err := NewInviteCoder("test-salt")
	if err != nil {
		t.Fatalf("NewInviteCoder: %v", err)
	}

	for _, code := range []string{"", "   ", "!!!", "not a code"} {
		if _, err := coder.Decode(code); err == nil {
			t.Errorf("Decode(%q) succeeded, want error", code)
		}
	}
}
