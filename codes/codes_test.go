package codes

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := FromEntries([]Entry{
		{Name: "Tai Chi (Beginner)", Code: "TC01"},
		{Name: "Tai Chi (Advanced)", Code: "TC01"},
		{Name: "書法班", Code: "CL02"},
		{Name: "Watercolour Painting", Code: "WP03"},
	})
	if err != nil {
		t.Fatalf("FromEntries: %v", err)
	}
	return r
}

func TestResolve(t *testing.T) {
	r := newTestResolver(t)
	cases := []struct {
		in, want string
	}{
		{"Tai Chi (Beginner)", "TC01"},
		{"Tai Chi (Advanced)", "TC01"},
		{"  書法班\t", "CL02"},
		{"watercolour painting", ""},
		{"Watercolour  Painting", ""},
		{"Pottery", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := r.Resolve(tc.in); got != tc.want {
			t.Fatalf("Resolve(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNilResolver(t *testing.T) {
	var r *Resolver
	if got := r.Resolve("Tai Chi (Beginner)"); got != "" {
		t.Fatalf("nil resolver returned %q", got)
	}
	if r.Len() != 0 {
		t.Fatalf("nil resolver length")
	}
}

func TestNewTrimsKeys(t *testing.T) {
	r, err := New(map[string]string{" Yoga ": "YG01"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := r.Resolve("Yoga"); got != "YG01" {
		t.Fatalf("got %q", got)
	}
	if diff := cmp.Diff([]string{"Yoga"}, r.Names()); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}
}

func TestConflictingEntries(t *testing.T) {
	_, err := FromEntries([]Entry{{Name: "Yoga", Code: "YG01"}, {Name: "Yoga ", Code: "YG02"}})
	if err == nil {
		t.Fatalf("conflicting codes should be rejected")
	}
	if _, err := FromEntries([]Entry{{Name: "  ", Code: "X"}}); err == nil {
		t.Fatalf("blank names should be rejected")
	}
}
