package smsgw

import (
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone returns the 13-digit `8801XXXXXXXXX` form of a local (`01XXXXXXXXX`) or prefixed number.
func NormalizePhone(phone string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
	digits = strings.TrimPrefix(digits, "+")

	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", errors.Wrapf(ErrInvalidPhone, "%q", phone)
		}
	}

	switch {
	case len(digits) == 11 && strings.HasPrefix(digits, "01"):
		return "88" + digits, nil
	case len(digits) == 13 && strings.HasPrefix(digits, "8801"):
		return digits, nil
	}
	return "", errors.Wrapf(ErrInvalidPhone, "%q", phone)
}
