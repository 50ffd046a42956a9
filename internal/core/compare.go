package core

import "strings"

// CompareBytes orders strings byte-wise.
func CompareBytes(a, b string) int {
	return strings.Compare(a, b)
}

// CompareNatural orders strings alphanumerically: runs of ASCII digits are
// compared by numeric value, and a digit sorts before any other character.
// "file2" < "file10".
func CompareNatural(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		da, db := isDigit(ca), isDigit(cb)

		switch {
		case da && db:
			ei, ej := digitRunEnd(a, i), digitRunEnd(b, j)
			if c := compareDigitRuns(a[i:ei], b[j:ej]); c != 0 {
				return c
			}
			i, j = ei, ej
		case da:
			return -1
		case db:
			return 1
		case ca != cb:
			if ca < cb {
				return -1
			}
			return 1
		default:
			i++
			j++
		}
	}

	switch {
	case j < len(b):
		return -1
	case i < len(a):
		return 1
	}
	return 0
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func digitRunEnd(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}

// compareDigitRuns compares two digit strings by value without overflow.
func compareDigitRuns(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
