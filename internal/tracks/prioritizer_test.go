package tracks

import (
	"testing"

	"github.com/leandrodaf/midiguess/sdk/contracts"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want contracts.PriorityClass
	}{
		{"percussion", "Percussion", contracts.Percussion},
		{"percussion wins over later keywords", "Lead PERCUSSION melody", contracts.Percussion},
		{"bass", "Slap Bass", contracts.Bass},
		{"bass before guitar", "Bass Guitar", contracts.Bass},
		{"guitar", "guitar 2", contracts.Guitar},
		{"lead", "Synth Lead", contracts.Lead},
		{"lead before voice", "Lead Voice", contracts.Lead},
		{"voice", "Choir Voice", contracts.Voice},
		{"melody", "Melody", contracts.Melody},
		{"no keyword", "Strings", contracts.Other},
		{"drums are not a keyword", "Drums", contracts.Other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(4, tt.raw)
			if got.Priority != tt.want {
				t.Fatalf("Classify(%q) priority = %v, want %v", tt.raw, got.Priority, tt.want)
			}
			if got.ID != 4 {
				t.Fatalf("Classify id = %d, want 4", got.ID)
			}
		})
	}
}

func TestClassifyDefaultsBlankNames(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n"} {
		got := Classify(2, raw)
		if got.Name != "Track 3" {
			t.Fatalf("Classify(2, %q).Name = %q, want %q", raw, got.Name, "Track 3")
		}
		if got.Priority != contracts.Other {
			t.Fatalf("Classify(2, %q).Priority = %v, want other", raw, got.Priority)
		}
	}
	if got := Classify(0, "  Bass  ").Name; got != "Bass" {
		t.Fatalf("name not trimmed: %q", got)
	}
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name   string
		tracks []contracts.Track
		want   int
	}{
		{
			name: "lowest priority value",
			tracks: []contracts.Track{
				Classify(0, "Lead"), Classify(1, "Bass"), Classify(2, "Percussion"),
			},
			want: 2,
		},
		{
			name: "ties go to the lowest id",
			tracks: []contracts.Track{
				Classify(0, "Melody"), Classify(1, "Bass 1"), Classify(2, "Bass 2"),
			},
			want: 1,
		},
		{
			name: "other beats guitar",
			tracks: []contracts.Track{
				Classify(0, "Guitar"), Classify(1, "Piano"),
			},
			want: 1,
		},
		{
			name:   "single track",
			tracks: []contracts.Track{Classify(0, "Melody")},
			want:   0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Initialize(tt.tracks)
			unmuted := 0
			for _, tr := range got {
				if !tr.Muted {
					unmuted++
					if tr.ID != tt.want {
						t.Fatalf("unmuted id = %d, want %d", tr.ID, tt.want)
					}
				}
			}
			if unmuted != 1 {
				t.Fatalf("unmuted count = %d, want 1", unmuted)
			}
		})
	}
}

func TestInitializeDoesNotModifyInput(t *testing.T) {
	in := []contracts.Track{Classify(0, "Lead"), Classify(1, "Bass")}
	Initialize(in)
	if in[0].Muted || in[1].Muted {
		t.Fatalf("input slice modified: %+v", in)
	}
	if got := Initialize(nil); len(got) != 0 {
		t.Fatalf("Initialize(nil) = %v, want empty", got)
	}
}
