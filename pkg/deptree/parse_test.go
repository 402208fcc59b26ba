package deptree

import (
	"reflect"
	"testing"
)

func TestParseStructure(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Forest
	}{
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name: "flat roots",
			text: "alpha\nbeta\n",
			want: Forest{
				{Name: "alpha"},
				{Name: "beta"},
			},
		},
		{
			name: "nested chain",
			text: "alpha\n  beta\n    gamma\n",
			want: Forest{
				{Name: "alpha", Deps: Forest{
					{Name: "beta", Deps: Forest{
						{Name: "gamma"},
					}},
				}},
			},
		},
		{
			name: "dedent back to root",
			text: "alpha\n  beta\ngamma\n",
			want: Forest{
				{Name: "alpha", Deps: Forest{{Name: "beta"}}},
				{Name: "gamma"},
			},
		},
		{
			name: "dedent two levels",
			text: "alpha\n  beta\n    gamma\n  delta\n",
			want: Forest{
				{Name: "alpha", Deps: Forest{
					{Name: "beta", Deps: Forest{{Name: "gamma"}}},
					{Name: "delta"},
				}},
			},
		},
		{
			name: "no trailing newline",
			text: "alpha\n  beta",
			want: Forest{
				{Name: "alpha", Deps: Forest{{Name: "beta"}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    *Package
		wantErr bool
	}{
		{
			name: "bare name",
			line: "requests",
			want: &Package{Name: "requests"},
		},
		{
			name: "name and version",
			line: "requests==2.31.0",
			want: &Package{Name: "requests", Version: "2.31.0"},
		},
		{
			name: "spaces around version separator",
			line: "requests == 2.31.0",
			want: &Package{Name: "requests", Version: "2.31.0"},
		},
		{
			name: "explicit empty version collapses",
			line: "requests==",
			want: &Package{Name: "requests"},
		},
		{
			name: "source locator",
			line: "tool @ git+https://example.com/tool.git == 1.0",
			want: &Package{Name: "tool", Source: "git+https://example.com/tool.git", Version: "1.0"},
		},
		{
			name: "source without version",
			line: "tool @ file:///opt/tool",
			want: &Package{Name: "tool", Source: "file:///opt/tool"},
		},
		{
			name: "single marker",
			line: "requests == 2.31.0; python_version == 3.11",
			want: &Package{
				Name:    "requests",
				Version: "2.31.0",
				Markers: []Marker{{Key: "python_version", Val: "3.11"}},
			},
		},
		{
			name: "multiple markers keep order",
			line: "requests; python_version == 3.11 and sys_platform == linux",
			want: &Package{
				Name: "requests",
				Markers: []Marker{
					{Key: "python_version", Val: "3.11"},
					{Key: "sys_platform", Val: "linux"},
				},
			},
		},
		{
			name:    "empty name",
			line:    "==1.0",
			wantErr: true,
		},
		{
			name:    "blank line",
			line:    "   ",
			wantErr: true,
		},
		{
			name:    "marker clause without separator",
			line:    "requests; python_version",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseLine(%q) expected error, got %+v", tt.line, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLine(%q) error = %v", tt.line, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseMalformedChildFails(t *testing.T) {
	_, err := Parse("alpha\n  ==1.0\n")
	if err == nil {
		t.Fatal("Parse() expected error for malformed nested line")
	}
}

func TestParseTrailingBlankLine(t *testing.T) {
	got, err := Parse("alpha\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != "alpha" {
		t.Errorf("Parse() = %+v, want single alpha node", got)
	}
}
