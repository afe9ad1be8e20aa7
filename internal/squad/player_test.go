package squad

import (
	"errors"
	"testing"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in   string
		want Position
	}{
		{"GKP", Goalkeeper},
		{"gk", Goalkeeper},
		{"Defender", Defender},
		{"mid", Midfielder},
		{" FWD ", Forward},
	}
	for _, tt := range tests {
		got, err := ParsePosition(tt.in)
		if err != nil {
			t.Errorf("ParsePosition(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePosition(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
	if _, err := ParsePosition("striker"); err == nil {
		t.Error("ParsePosition(striker) should fail")
	}
}

func TestParseAvailability(t *testing.T) {
	tests := map[string]Availability{
		"a": Available,
		"i": Injured,
		"s": Suspended,
		"d": Unknown,
		"u": Unknown,
		"":  Unknown,
	}
	for code, want := range tests {
		if got := ParseAvailability(code); got != want {
			t.Errorf("ParseAvailability(%q) = %s, want %s", code, got, want)
		}
	}
}

func TestNewDatasetValidation(t *testing.T) {
	good := mkPlayer(1, Forward, 1, "7.5", 5)

	badPrice := good
	badPrice.ID = 2
	badPrice.Price = dec("0")

	badPrecision := good
	badPrecision.ID = 3
	badPrecision.Price = dec("7.55")

	badPosition := good
	badPosition.ID = 4
	badPosition.Position = Position(9)

	tests := []struct {
		name    string
		players []Player
	}{
		{"non-positive price", []Player{good, badPrice}},
		{"two decimals", []Player{badPrecision}},
		{"bad position", []Player{badPosition}},
		{"duplicate id", []Player{good, good}},
	}
	for _, tt := range tests {
		if _, err := NewDataset(tt.players); !errors.Is(err, ErrInvalidDataset) {
			t.Errorf("%s: err = %v, want ErrInvalidDataset", tt.name, err)
		}
	}

	d, err := NewDataset([]Player{good, mkPlayer(7, Defender, 3, "4.0", 2)})
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	if i, ok := d.Index(7); !ok || i != 1 {
		t.Errorf("Index(7) = %d, %v; want 1, true", i, ok)
	}
	if ids := d.TeamIDs(); len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Errorf("TeamIDs = %v, want [1 3]", ids)
	}
}
