package units

import (
	"errors"
	"math"
	"testing"
)

func approx(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"10 cm", 100},
		{"10cm", 100},
		{"  7   cm ", 70},
		{"1.5 m", 1500},
		{"2 mm", 2},
		{"-3 mm", -3},
		{"1e3 um", 1},
		{"5 Ang", 5e-7},
		{"1 in", 25.4},
		{"2 ft", 609.6},
		{"3 meters", 3000},
		{"1 Kilometer", 1e6},
		{"0 cm", 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Parse(Length, tt.raw)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.raw, err)
			}
			if !approx(got, tt.want) {
				t.Errorf("Parse(%q) = %g, want %g", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		raw  string
		want error
	}{
		{"", ErrBadNumber},
		{"cm", ErrBadNumber},
		{"ten cm", ErrBadNumber},
		{"1.2.3 cm", ErrBadNumber},
		{"10", ErrMissingUnit},
		{"10 furlong", ErrUnknownUnit},
		{"10 MM", ErrUnknownUnit},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := Parse(Length, tt.raw)
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse(%q) error = %v, want %v", tt.raw, err, tt.want)
			}
		})
	}
}

func TestParseWithDefault(t *testing.T) {
	got, err := ParseWithDefault(Length, "12", "cm")
	if err != nil {
		t.Fatalf("ParseWithDefault: %v", err)
	}
	if got != 120 {
		t.Errorf("got %g, want 120", got)
	}
	// An explicit unit wins over the default.
	got, err = ParseWithDefault(Length, "12 mm", "cm")
	if err != nil {
		t.Fatalf("ParseWithDefault: %v", err)
	}
	if got != 12 {
		t.Errorf("got %g, want 12", got)
	}
}

func TestParseDimensionless(t *testing.T) {
	got, err := Parse(None, "4")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got != 4 {
		t.Errorf("got %g, want 4", got)
	}
	if _, err := Parse(None, "4 cm"); !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("error = %v, want ErrUnknownUnit", err)
	}
}

func TestUnknownCategory(t *testing.T) {
	if _, err := Units("Mass"); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("Units error = %v, want ErrUnknownCategory", err)
	}
	if _, err := Value("Mass", 1, "kg"); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("Value error = %v, want ErrUnknownCategory", err)
	}
}

func TestUnitsOrdered(t *testing.T) {
	us, err := Units(Length)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(us); i++ {
		if us[i].Value > us[i-1].Value {
			t.Errorf("%s (%g) listed after smaller %s (%g)", us[i].Symbol, us[i].Value, us[i-1].Symbol, us[i-1].Value)
		}
	}
	if us[0].Symbol != "pc" || us[len(us)-1].Symbol != "fm" {
		t.Errorf("expected pc..fm, got %s..%s", us[0].Symbol, us[len(us)-1].Symbol)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{0, "0 mm"},
		{70, "7 cm"},
		{1500, "1.5 m"},
		{2, "2 mm"},
		{0.5, "500 um"},
		{-250, "-25 cm"},
		{304.8, "30.48 cm"},
	}
	for _, tt := range tests {
		if got := Format(Length, tt.v); got != tt.want {
			t.Errorf("Format(%g) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

// Values written by Format parse back to the same magnitude.
func TestFormatParses(t *testing.T) {
	for _, v := range []float64{1, 12.5, 70, 1234, 0.002} {
		got, err := Parse(Length, Format(Length, v))
		if err != nil {
			t.Fatalf("Parse(Format(%g)): %v", v, err)
		}
		if !approx(got, v) {
			t.Errorf("Parse(Format(%g)) = %g", v, got)
		}
	}
}
