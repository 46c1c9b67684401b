package devnum

import "testing"

func TestKnownEncodings(t *testing.T) {
	cases := []struct {
		major, minor uint32
		dev          uint64
	}{
		{0, 0, 0},
		{1, 3, 0x103},          // /dev/null
		{8, 1, 0x801},          // /dev/sda1
		{259, 0, 0x10300},      // nvme
		{0xfff, 0xff, 0xfffff}, // legacy 12:8 limit
		{0x1000, 0, 0x100000000000},
		{0, 0x100, 0x100000},
		{0xffffffff, 0xffffffff, 0xffffffffffffffff},
	}
	for _, tc := range cases {
		if got := Makedev(tc.major, tc.minor); got != tc.dev {
			t.Fatalf("Makedev(%#x, %#x) = %#x, want %#x", tc.major, tc.minor, got, tc.dev)
		}
		if maj, min := Split(tc.dev); maj != tc.major || min != tc.minor {
			t.Fatalf("Split(%#x) = (%#x, %#x), want (%#x, %#x)", tc.dev, maj, min, tc.major, tc.minor)
		}
	}
}

// Every major/minor pair in [0, 0xFFFFF] must survive a round trip.
// The grid is strided to keep the run short; the stride is odd so every
// bit boundary of both fields is crossed.
func TestRoundTrip(t *testing.T) {
	const limit = 0xFFFFF
	const stride = 0x3FF
	for major := uint32(0); major <= limit; major += stride {
		for minor := uint32(0); minor <= limit; minor += stride {
			dev := Makedev(major, minor)
			if got := Major(dev); got != major {
				t.Fatalf("Major(Makedev(%#x, %#x)) = %#x", major, minor, got)
			}
			if got := Minor(dev); got != minor {
				t.Fatalf("Minor(Makedev(%#x, %#x)) = %#x", major, minor, got)
			}
		}
	}
	for v := uint32(0); v <= limit; v++ {
		if Major(Makedev(v, 0)) != v || Minor(Makedev(0, v)) != v {
			t.Fatalf("round trip failed for %#x", v)
		}
	}
}
