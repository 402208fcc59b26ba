package lister

import (
	"context"
	"strings"
	"testing"
)

func TestStripHeader(t *testing.T) {
	sep := strings.Repeat("-", 72) + "\n"

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "no separator passes through",
			text: "alpha\n  beta\n",
			want: "alpha\n  beta\n",
		},
		{
			name: "single warning block stripped",
			text: "Warning: possibly conflicting dependencies found:\n* foo\n" + sep + "alpha\n",
			want: "alpha\n",
		},
		{
			name: "only text after the last separator survives",
			text: "first\n" + sep + "second\n" + sep + "alpha\n  beta\n",
			want: "alpha\n  beta\n",
		},
		{
			name: "empty input",
			text: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHeader(tt.text); got != tt.want {
				t.Errorf("StripHeader() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestList(t *testing.T) {
	t.Run("captures stdout", func(t *testing.T) {
		l := &Lister{Command: []string{"echo", "alpha"}}
		got, err := l.List(context.Background())
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if got != "alpha\n" {
			t.Errorf("List() = %q, want %q", got, "alpha\n")
		}
	})

	t.Run("non-zero exit is an error", func(t *testing.T) {
		l := &Lister{Command: []string{"false"}}
		if _, err := l.List(context.Background()); err == nil {
			t.Fatal("List() expected error for failing command")
		}
	})

	t.Run("missing binary is an error", func(t *testing.T) {
		l := &Lister{Command: []string{"depdrift-no-such-binary"}}
		if _, err := l.List(context.Background()); err == nil {
			t.Fatal("List() expected error for missing binary")
		}
	})
}
