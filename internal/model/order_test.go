package model

import "testing"

func TestNextOrderID(t *testing.T) {
	cases := []struct {
		lastID string
		want   string
	}{
		{"", "ORD-1"},
		{"ORD-1", "ORD-2"},
		{"ORD-1042", "ORD-1043"},
		{"garbage", "ORD-1"},
		{"ORD-", "ORD-1"},
		{"ord-5", "ORD-1"},
	}
	for _, tc := range cases {
		if got := NextOrderID(tc.lastID); got != tc.want {
			t.Errorf("NextOrderID(%q) = %q, want %q", tc.lastID, got, tc.want)
		}
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	allowed := []struct {
		from, to OrderStatus
	}{
		{StatusPending, StatusShipped},
		{StatusShipped, StatusDelivered},
		{StatusDelivered, StatusPaid},
		{StatusPending, StatusCancelled},
		{StatusShipped, StatusCancelled},
		{StatusDelivered, StatusCancelled},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransition(tc.to) {
			t.Errorf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}

	forbidden := []struct {
		from, to OrderStatus
	}{
		{StatusPending, StatusDelivered},
		{StatusPending, StatusPaid},
		{StatusShipped, StatusPaid},
		{StatusShipped, StatusPending},
		{StatusPaid, StatusCancelled},
		{StatusPaid, StatusShipped},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusCancelled},
	}
	for _, tc := range forbidden {
		if tc.from.CanTransition(tc.to) {
			t.Errorf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

func TestOrderStatusIsTerminal(t *testing.T) {
	if !StatusPaid.IsTerminal() || !StatusCancelled.IsTerminal() {
		t.Error("PAID and CANCELLED are terminal")
	}
	for _, s := range []OrderStatus{StatusPending, StatusShipped, StatusDelivered} {
		if s.IsTerminal() {
			t.Errorf("%s must not be terminal", s)
		}
	}
}
