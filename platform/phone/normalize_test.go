package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"07911 123456", "+447911123456"},
		{"+44 7911 123456", "+447911123456"},
		{"020 7946 0958", "+442079460958"},
		{"not a number", "not a number"},
		{"  07911 123456  ", "+447911123456"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizeE164(tc.in); got != tc.want {
			t.Errorf("NormalizeE164(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
