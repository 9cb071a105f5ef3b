package core

import "errors"

// MaxGPIOPin is the highest GPIO number on RP2040/RP2350 boards
const MaxGPIOPin = 47

var (
	ErrPinName  = errors.New("invalid pin name")
	ErrPinRange = errors.New("pin number out of range")
)

// LookupPin resolves a config pin name ("gpio5", "GP5", "5") to a GPIO number
func LookupPin(name string) (GPIOPin, error) {
	digits := name
	switch {
	case hasPrefixFold(name, "gpio"):
		digits = name[4:]
	case hasPrefixFold(name, "gp"):
		digits = name[2:]
	}
	if len(digits) == 0 || len(digits) > 3 {
		return 0, ErrPinName
	}

	n := 0
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return 0, ErrPinName
		}
		n = n*10 + int(c-'0')
	}
	if n > MaxGPIOPin {
		return 0, ErrPinRange
	}
	return GPIOPin(n), nil
}

func hasPrefixFold(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != prefix[i] {
			return false
		}
	}
	return true
}
