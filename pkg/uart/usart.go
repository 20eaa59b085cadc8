package uart

import (
	"errors"
	"fmt"

	"github.com/mbalug7/go-nxtiot/pkg/board"
	"github.com/mbalug7/go-nxtiot/pkg/hal"
)

// USART is the ATmega328P USART0 driven through its registers. Every wait is a
// busy loop on a status flag and has no timeout.
type USART struct {
	ucsra        hal.Register
	ucsrb        hal.Register
	ucsrc        hal.Register
	ubrrl        hal.Register
	ubrrh        hal.Register
	udr          hal.Register
	cpuFrequency uint32
	handler      func()
}

func NewUSART(regs hal.RegisterFile, cpuFrequency uint32) *USART {
	return &USART{
		ucsra:        regs.Register(board.UCSR0A),
		ucsrb:        regs.Register(board.UCSR0B),
		ucsrc:        regs.Register(board.UCSR0C),
		ubrrl:        regs.Register(board.UBRR0L),
		ubrrh:        regs.Register(board.UBRR0H),
		udr:          regs.Register(board.UDR0),
		cpuFrequency: cpuFrequency,
	}
}

// UBRR0 is 12 bits wide
const maxPrescale = 0x0FFF

var ErrBaudRate = errors.New("baud rate out of range")

// Prescale is the UBRR0 value for baud in normal (not double) speed mode. It
// fails when baud is faster than cpuFrequency/16 or too slow for UBRR0.
func Prescale(cpuFrequency uint32, baud int) (uint16, error) {
	if baud <= 0 || uint64(baud) > uint64(cpuFrequency)/16 {
		return 0, fmt.Errorf("%w: %d at %d Hz", ErrBaudRate, baud, cpuFrequency)
	}
	prescale := uint64(cpuFrequency)/(16*uint64(baud)) - 1
	if prescale > maxPrescale {
		return 0, fmt.Errorf("%w: %d at %d Hz", ErrBaudRate, baud, cpuFrequency)
	}
	return uint16(prescale), nil
}

func (obj *USART) Configure(cfg Config) error {
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("failed to configure USART0: %w", err)
	}
	prescale, err := Prescale(obj.cpuFrequency, cfg.BaudRate)
	if err != nil {
		return fmt.Errorf("failed to configure USART0: %w", err)
	}
	obj.ubrrh.SetValue(uint8(prescale >> 8))
	obj.ubrrl.SetValue(uint8(prescale))

	hal.ClearBits(obj.ucsra, hal.Bit(bitU2X0))
	hal.SetBits(obj.ucsrb, hal.Bit(bitRXEN0)|hal.Bit(bitTXEN0))

	format := &FrameFormat{}
	format.SetValue(obj.ucsrc.GetValue())
	format.apply(cfg)
	obj.ucsrc.SetValue(format.GetValue())
	return nil
}

func (obj *USART) WriteByte(c byte) error {
	for !hal.HasBits(obj.ucsra, hal.Bit(bitUDRE0)) {
	}
	obj.udr.SetValue(c)
	return nil
}

func (obj *USART) ReadByte() (byte, error) {
	for !obj.DataReady() {
	}
	return obj.udr.GetValue(), nil
}

func (obj *USART) DataReady() bool {
	return hal.HasBits(obj.ucsra, hal.Bit(bitRXC0))
}

func (obj *USART) SetReceiveInterrupt(enabled bool) {
	if enabled {
		hal.SetBits(obj.ucsrb, hal.Bit(bitRXCIE0))
	} else {
		hal.ClearBits(obj.ucsrb, hal.Bit(bitRXCIE0))
	}
}

func (obj *USART) SetInterruptHandler(fn func()) {
	obj.handler = fn
}

// Interrupt is the USART_RX vector body. The firmware calls it from the ISR.
func (obj *USART) Interrupt() {
	if obj.handler == nil || !hal.HasBits(obj.ucsrb, hal.Bit(bitRXCIE0)) {
		return
	}
	obj.handler()
}
