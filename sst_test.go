package excelstream

import (
	"strings"
	"testing"
)

func TestRouteString(t *testing.T) {
	tests := []struct {
		name      string
		s         string
		threshold int
		known     bool
		size      int
		maxUnique int
		want      stringRoute
	}{
		{"ShortNew", "abc", 50, false, 0, 100, routeShared},
		{"ShortKnown", "abc", 50, true, 100, 100, routeShared},
		{"AtThreshold", strings.Repeat("x", 50), 50, false, 0, 100, routeShared},
		{"OverThreshold", strings.Repeat("x", 51), 50, false, 0, 100, routeInline},
		{"TableFullMiss", "new", 50, false, 100, 100, routeInline},
		{"TableFullHit", "old", 50, true, 100, 100, routeShared},
		{"ZeroCap", "any", 50, false, 0, 0, routeInline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := routeString(tt.s, tt.threshold, tt.known, tt.size, tt.maxUnique)
			if got != tt.want {
				t.Errorf("routeString(%q) = %v, want %v", tt.s, got, tt.want)
			}
		})
	}
}

func TestSharedStringsDedup(t *testing.T) {
	sst := newSharedStrings(50, 100)

	route, idx := sst.route("Hello")
	if route != routeShared || idx != 0 {
		t.Errorf("Expected shared index 0, got %v/%d", route, idx)
	}
	route, idx = sst.route("World")
	if route != routeShared || idx != 1 {
		t.Errorf("Expected shared index 1, got %v/%d", route, idx)
	}
	route, idx = sst.route("Hello")
	if route != routeShared || idx != 0 {
		t.Errorf("Duplicate should return index 0, got %v/%d", route, idx)
	}
	if sst.uniqueCount() != 2 {
		t.Errorf("Expected 2 unique strings, got %d", sst.uniqueCount())
	}
}

func TestSharedStringsCapOverflow(t *testing.T) {
	sst := newSharedStrings(50, 2)

	for i, s := range []string{"a", "b"} {
		route, idx := sst.route(s)
		if route != routeShared || idx != i {
			t.Fatalf("Expected %q shared at %d, got %v/%d", s, i, route, idx)
		}
	}

	// The table is full: misses go inline, hits keep resolving.
	if route, _ := sst.route("c"); route != routeInline {
		t.Error("Expected overflow miss to go inline")
	}
	if route, idx := sst.route("a"); route != routeShared || idx != 0 {
		t.Errorf("Expected overflow hit to resolve, got %v/%d", route, idx)
	}
	if sst.uniqueCount() != 2 {
		t.Errorf("Cap overflow must not grow the table, got %d entries", sst.uniqueCount())
	}
}

func TestSharedStringsLongStringsStayOut(t *testing.T) {
	sst := newSharedStrings(50, 100)
	long := strings.Repeat("d", 120)

	if route, _ := sst.route(long); route != routeInline {
		t.Error("Expected a 120-byte string to go inline")
	}
	if sst.uniqueCount() != 0 {
		t.Errorf("Inline strings must not enter the table, got %d entries", sst.uniqueCount())
	}
}

func TestSharedStringsDeterministic(t *testing.T) {
	input := []string{"x", "y", "x", "z", "y", "w"}

	build := func() []string {
		sst := newSharedStrings(50, 100)
		for _, s := range input {
			sst.route(s)
		}
		return sst.list
	}

	first, second := build(), build()
	if len(first) != len(second) {
		t.Fatalf("Table sizes differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Index %d differs: %q vs %q", i, first[i], second[i])
		}
	}
}
