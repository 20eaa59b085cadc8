// Package gpio implements GPIO pin control on AVR style ports, where the input
// latch (PINx), direction (DDRx) and output (PORTx) registers of a port are
// laid out next to each other.
package gpio

import "github.com/mbalug7/go-nxtiot/pkg/hal"

// offsets from the PORTx register
const (
	offsetPin  = 2
	offsetDDR  = 1
	offsetPort = 0
)

// Port is a GPIO port. It implements hal.Port and never returns an error.
type Port struct {
	input     hal.Register // PINx
	direction hal.Register // DDRx
	drive     hal.Register // PORTx
}

// NewPort resolves the registers of the port whose PORTx register is at base.
func NewPort(regs hal.RegisterFile, base hal.RegAddress) *Port {
	return &Port{
		input:     regs.Register(base - offsetPin),
		direction: regs.Register(base - offsetDDR),
		drive:     regs.Register(base - offsetPort),
	}
}

func (obj *Port) InitPin(pin uint8, mode hal.PinMode) error {
	switch mode {
	case hal.PinInput:
		hal.ClearBits(obj.direction, hal.Bit(pin))
		hal.ClearBits(obj.drive, hal.Bit(pin))
	case hal.PinInputPullUp:
		hal.ClearBits(obj.direction, hal.Bit(pin))
		hal.SetBits(obj.drive, hal.Bit(pin))
	default:
		hal.SetBits(obj.direction, hal.Bit(pin))
	}
	return nil
}

func (obj *Port) WritePin(pin uint8, state hal.PinState) error {
	if state == hal.PinLow {
		hal.ClearBits(obj.drive, hal.Bit(pin))
	} else {
		hal.SetBits(obj.drive, hal.Bit(pin))
	}
	return nil
}

// TogglePin flips the output bit as it currently is in PORTx.
func (obj *Port) TogglePin(pin uint8) error {
	obj.drive.SetValue(obj.drive.GetValue() ^ hal.Bit(pin))
	return nil
}

func (obj *Port) ReadPin(pin uint8) (hal.PinState, error) {
	if hal.HasBits(obj.input, hal.Bit(pin)) {
		return hal.PinHigh, nil
	}
	return hal.PinLow, nil
}
