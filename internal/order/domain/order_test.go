package domain

import "testing"

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusFailed, true},
		{StatusFailed, StatusPaid, true},
		{StatusPaid, StatusPending, false},
		{StatusPaid, StatusFailed, false},
		{StatusPaid, StatusPaid, false},
		{StatusFailed, StatusPending, false},
		{StatusFailed, StatusFailed, false},
		{StatusPending, StatusPending, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Errorf("%q -> %q: want %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, v := range []string{"En attente", "success", "failed"} {
		if _, ok := ParseStatus(v); !ok {
			t.Errorf("expected %q to parse", v)
		}
	}
	if _, ok := ParseStatus("pending"); ok {
		t.Error("unknown status must not parse")
	}
}
