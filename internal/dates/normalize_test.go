package dates

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1862-06-04", "1862-06-04"},
		{"June 4 1862", "1862-06-04"},
		{"Ju.ne 4 1862", "1862-06-04"},
		{"June 4 1B62", "1B62-06-04"},
		{"6/4/1862", "1862-04-06"},
		{"1862", "1862--"},
		{"June 1862", "1862-06-"},
		{"June", "-06-"},
		{"15 1967", "1967--15"},
		{"APRIL 14 19-48", "0048-04-14"},
		{"19-48 APRIL 14", "0048-04-19"},
		{"Jum 6 1944", "1944-06-06"},
		{"MA 5 1900", "1900-03-05"},
		{"Sept 9 1901", "1901-09-09"},
		{"1944-6-6", "1944-06-06"},
		{"31", "--31"},
		{"", ""},
		{"---", ""},
		{"XQZ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"1944-06-06",
		"1701-01-01",
		"2099-12-31",
		"June 4 1862",
		"Jum 6 1944",
		"6/4/1862",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestIsCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1944-06-06", true},
		{"2099-12-31", true},
		{"1700-01-01", false},
		{"2100-01-01", false},
		{"1944-6-06", false},
		{"1944-13-01", false},
		{"1944-00-10", false},
		{"1944-01-32", false},
		{"1944-01", false},
		{"19a4-01-01", false},
	}
	for _, tt := range tests {
		if got := IsCanonical(tt.in); got != tt.want {
			t.Errorf("IsCanonical(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"bare year", "1944", 100},
		{"year inside phrase", "Jum 6 1944", 100},
		{"upper bound year", "2100", 100},
		{"below year range", "1699", 0},
		{"exact month", "OCTOBER 9 898", 100},
		{"month typo", "JUM", 57},
		{"surname is not a month", "Jones", 22},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.token); got != tt.want {
				t.Errorf("Score(%q) = %d, want %d", tt.token, got, tt.want)
			}
		})
	}
}
