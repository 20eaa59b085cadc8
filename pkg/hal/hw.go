package hal

import "errors"

// ErrShortBuffer is returned by Serial.Read for a buffer without room for the
// terminator.
var ErrShortBuffer = errors.New("read buffer has no room for the terminator")

type PinMode int

const (
	PinInput PinMode = iota
	PinInputPullUp
	PinOutput
)

func (m PinMode) String() string {
	switch m {
	case PinInput:
		return "input"
	case PinInputPullUp:
		return "input-pullup"
	case PinOutput:
		return "output"
	default:
		return "unknown"
	}
}

type PinState int

const (
	PinLow PinState = iota
	PinHigh
)

func (s PinState) String() string {
	if s == PinHigh {
		return "high"
	}
	return "low"
}

// Port drives the pins of one GPIO port. Pins must be initialized with InitPin
// before they are written or read.
type Port interface {
	InitPin(pin uint8, mode PinMode) error
	WritePin(pin uint8, state PinState) error
	TogglePin(pin uint8) error
	ReadPin(pin uint8) (PinState, error)
}

// Serial is the line oriented view of the UART used by modem drivers. Read
// returns ErrShortBuffer for an empty buf.
type Serial interface {
	Init() error
	Send(text string) error
	Read(buf []byte) (int, error)
}
