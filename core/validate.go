package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotHexString  = errors.New("core: not a 0x-prefixed hex string")
	ErrNotHexAddress = errors.New("core: not a 20-byte hex address")
)

// ValidateHexString checks for a 0x-prefixed, even-length hex string
// with at least one byte of payload.
func ValidateHexString(value string) error {
	digits, err := hexDigits(value)
	if err != nil {
		return err
	}
	if len(digits) == 0 || len(digits)%2 != 0 {
		return fmt.Errorf("%w: %q", ErrNotHexString, value)
	}
	return nil
}

// ValidateHexAddress checks for a 0x-prefixed 20-byte hex address.
func ValidateHexAddress(value string) error {
	digits, err := hexDigits(value)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrNotHexAddress, value)
	}
	if len(digits) != 40 {
		return fmt.Errorf("%w: %q", ErrNotHexAddress, value)
	}
	return nil
}

func hexDigits(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if !strings.HasPrefix(trimmed, "0x") && !strings.HasPrefix(trimmed, "0X") {
		return "", fmt.Errorf("%w: %q", ErrNotHexString, value)
	}
	digits := trimmed[2:]
	for _, r := range digits {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return "", fmt.Errorf("%w: %q", ErrNotHexString, value)
		}
	}
	return digits, nil
}
