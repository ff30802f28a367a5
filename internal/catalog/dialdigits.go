package catalog

import "strings"

// dialMap is the standard letter layout of a telephone keypad. Q and Z have
// no home on the classic dial and are dropped.
var dialMap = map[rune]rune{
	'A': '2', 'B': '2', 'C': '2',
	'D': '3', 'E': '3', 'F': '3',
	'G': '4', 'H': '4', 'I': '4',
	'J': '5', 'K': '5', 'L': '5',
	'M': '6', 'N': '6', 'O': '6',
	'P': '7', 'R': '7', 'S': '7',
	'T': '8', 'U': '8', 'V': '8',
	'W': '9', 'X': '9', 'Y': '9',
}

// DialDigits converts a word to the digits it spells on a telephone keypad.
// Digits pass through; anything undialable is dropped.
func DialDigits(input string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(input) {
		switch {
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			if d, ok := dialMap[r]; ok {
				sb.WriteRune(d)
			}
		}
	}
	return sb.String()
}

// SpokenDigits spaces a dial code out digit by digit so the synthesizer
// reads "5 6 5 3" instead of "five thousand six hundred fifty-three".
func SpokenDigits(code string) string {
	digits := make([]string, 0, len(code))
	for _, r := range code {
		if r >= '0' && r <= '9' {
			digits = append(digits, string(r))
		}
	}
	return strings.Join(digits, " ")
}
