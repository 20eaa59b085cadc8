// Package board holds the NXTIOT board definition: ATmega328P register
// addresses and the pins the board routes to its peripherals.
package board

import "github.com/mbalug7/go-nxtiot/pkg/hal"

// CPUFrequency of the on-board crystal in Hz.
const CPUFrequency = 16000000

// Output registers of each GPIO port. PINx and DDRx sit at -2 and -1.
const (
	PORTB hal.RegAddress = 0x25
	PORTC hal.RegAddress = 0x28
	PORTD hal.RegAddress = 0x2B
)

// USART0 register addresses in the data space.
const (
	UCSR0A hal.RegAddress = 0xC0
	UCSR0B hal.RegAddress = 0xC1
	UCSR0C hal.RegAddress = 0xC2
	UBRR0L hal.RegAddress = 0xC4
	UBRR0H hal.RegAddress = 0xC5
	UDR0   hal.RegAddress = 0xC6
)

// Pin is a bit on a GPIO port.
type Pin struct {
	Port hal.RegAddress
	Bit  uint8
}

var (
	LED    = Pin{Port: PORTB, Bit: 0}
	Switch = Pin{Port: PORTD, Bit: 6}

	D2 = Pin{Port: PORTD, Bit: 2}
	D3 = Pin{Port: PORTD, Bit: 3}
	D4 = Pin{Port: PORTD, Bit: 4}
	D5 = Pin{Port: PORTD, Bit: 5}
	B1 = Pin{Port: PORTB, Bit: 1}
	C2 = Pin{Port: PORTC, Bit: 2}

	ADC0 = Pin{Port: PORTC, Bit: 0}
	ADC1 = Pin{Port: PORTC, Bit: 1}
	ADC2 = Pin{Port: PORTC, Bit: 2}
	ADC3 = Pin{Port: PORTC, Bit: 3}
	ADC4 = Pin{Port: PORTC, Bit: 4}
	ADC5 = Pin{Port: PORTC, Bit: 5}

	// Wisol Sigfox module
	WisolTX     = Pin{Port: PORTD, Bit: 1}
	WisolRX     = Pin{Port: PORTD, Bit: 0}
	WisolEnable = Pin{Port: PORTD, Bit: 7}
)
