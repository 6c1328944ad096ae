package domain

// MaxSymbolLen is the maximum length of an instrument symbol on the
// wire. Symbols are matched exactly, with no normalization.
const MaxSymbolLen = 8

// ValidateSymbol reports whether s is a well-formed instrument symbol:
// 1 to MaxSymbolLen printable ASCII characters with no whitespace.
// The transport layer rejects commands with invalid symbols before
// they reach the engine.
func ValidateSymbol(s string) error {
	if len(s) == 0 || len(s) > MaxSymbolLen {
		return ErrInvalidSymbol
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= ' ' || c > '~' {
			return ErrInvalidSymbol
		}
	}
	return nil
}
