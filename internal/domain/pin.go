package domain

const PinLength = 4

func ValidatePin(pin string) error {
	if len(pin) != PinLength {
		return ErrInvalidPin
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return ErrInvalidPin
		}
	}
	return nil
}
