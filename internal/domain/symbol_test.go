package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateSymbol_Valid(t *testing.T) {
	for _, s := range []string{"A", "AAPL", "GOOG", "ABCDEFGH", "X.1", "a-b_c"} {
		if err := ValidateSymbol(s); err != nil {
			t.Errorf("symbol %q: unexpected error %v", s, err)
		}
	}
}

func TestValidateSymbol_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		symbol string
	}{
		{"empty", ""},
		{"over max length", strings.Repeat("A", MaxSymbolLen+1)},
		{"embedded space", "A B"},
		{"control character", "AB\x01"},
		{"non-ascii", "AÄPL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := ValidateSymbol(tc.symbol); !errors.Is(err, ErrInvalidSymbol) {
				t.Errorf("symbol %q: err = %v, want ErrInvalidSymbol", tc.symbol, err)
			}
		})
	}
}

func TestSide_StringAndOpposite(t *testing.T) {
	if SideBuy.String() != "B" || SideSell.String() != "S" {
		t.Errorf("side strings = %q/%q, want B/S", SideBuy.String(), SideSell.String())
	}
	if SideBuy.Opposite() != SideSell || SideSell.Opposite() != SideBuy {
		t.Error("Opposite should swap sides")
	}
}

func TestCommand_Side(t *testing.T) {
	if (Command{Type: CommandBuy}).Side() != SideBuy {
		t.Error("buy command should report SideBuy")
	}
	if (Command{Type: CommandSell}).Side() != SideSell {
		t.Error("sell command should report SideSell")
	}
}
