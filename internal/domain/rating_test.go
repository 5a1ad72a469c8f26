package domain

import "testing"

func TestParseRating(t *testing.T) {
	tests := []struct {
		input    string
		expected Rating
		wantErr  bool
	}{
		{"1", Again, false},
		{"2", Hard, false},
		{"3", Good, false},
		{"4", Easy, false},
		{"again", Again, false},
		{"HARD", Hard, false},
		{"g", Good, false},
		{"E", Easy, false},
		{"0", 0, true},
		{"5", 0, true},
		{"invalid", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			rating, err := ParseRating(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseRating(%q) expected error but got none", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRating(%q) unexpected error: %v", tt.input, err)
			}
			if rating != tt.expected {
				t.Errorf("ParseRating(%q) = %v, want %v", tt.input, rating, tt.expected)
			}
		})
	}
}

func TestRatingString(t *testing.T) {
	cases := map[Rating]string{Again: "Again", Hard: "Hard", Good: "Good", Easy: "Easy", Rating(0): "Unknown"}
	for r, want := range cases {
		if got := r.String(); got != want {
			t.Errorf("Rating(%d).String() = %q, want %q", r, got, want)
		}
	}
}

func TestRatingForCorrectness(t *testing.T) {
	if RatingForCorrectness(true) != Good {
		t.Error("correct answer should map to Good")
	}
	if RatingForCorrectness(false) != Again {
		t.Error("incorrect answer should map to Again")
	}
}

func TestParseJLPTLevel(t *testing.T) {
	for _, ok := range []string{"n5", "N4", " n3 ", "none"} {
		if _, err := ParseJLPTLevel(ok); err != nil {
			t.Errorf("ParseJLPTLevel(%q) unexpected error: %v", ok, err)
		}
	}
	if _, err := ParseJLPTLevel("n6"); err == nil {
		t.Error("expected error for invalid JLPT level")
	}
}
