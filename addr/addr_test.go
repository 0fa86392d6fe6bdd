package addr

import "testing"

func TestAddressEqual(t *testing.T) {
	a := NewV4([4]byte{127, 0, 0, 1})
	b := NewV4([4]byte{127, 0, 0, 1})
	if !a.Equal(b) {
		t.Fatalf("expected %v == %v", a, b)
	}
	c := NewV4([4]byte{127, 0, 0, 2})
	if a.Equal(c) {
		t.Fatalf("expected %v != %v", a, c)
	}
}

func TestAddressVersionMismatch(t *testing.T) {
	a := NewV4([4]byte{0, 0, 0, 0})
	b := NewV6([16]byte{})
	if a.Equal(b) {
		t.Fatalf("addresses of different versions must never compare equal")
	}
}

func TestOctetsLength(t *testing.T) {
	if n := len(Loopback4.Octets()); n != 4 {
		t.Fatalf("V4 Octets length = %d, want 4", n)
	}
	if n := len(Loopback6.Octets()); n != 16 {
		t.Fatalf("V6 Octets length = %d, want 16", n)
	}
}

func TestEndpointZero(t *testing.T) {
	var e Endpoint
	if !e.Zero() {
		t.Fatalf("zero-value Endpoint must report Zero() == true")
	}
	e2 := Endpoint{Addr: Loopback4, Port: 8080}
	if e2.Zero() {
		t.Fatalf("non-zero endpoint must report Zero() == false")
	}
}

func TestWellKnownAddresses(t *testing.T) {
	if Any4.Version != V4 || Loopback4.Version != V4 {
		t.Fatalf("Any4/Loopback4 must be V4")
	}
	if Any6.Version != V6 || Loopback6.Version != V6 {
		t.Fatalf("Any6/Loopback6 must be V6")
	}
	if Loopback6.Octets()[15] != 1 {
		t.Fatalf("Loopback6 must be ::1")
	}
}
