package uart

import (
	"github.com/mbalug7/go-nxtiot/pkg/board"
	"github.com/mbalug7/go-nxtiot/pkg/hal"
)

// UCSR0A bits
const (
	bitRXC0  = 7
	bitTXC0  = 6
	bitUDRE0 = 5
	bitFE0   = 4
	bitDOR0  = 3
	bitUPE0  = 2
	bitU2X0  = 1
	bitMPCM0 = 0
)

// UCSR0B bits
const (
	bitRXCIE0 = 7
	bitTXCIE0 = 6
	bitUDRIE0 = 5
	bitRXEN0  = 4
	bitTXEN0  = 3
	bitUCSZ02 = 2
	bitRXB80  = 1
	bitTXB80  = 0
)

// UCSR0C fields

type usartMode uint8

const (
	MODE_ASYNC       usartMode = 0x00
	MODE_SYNC        usartMode = 0x40
	MODE_MASTER_SPI  usartMode = 0xC0
	usartModeMask    uint8     = 0xC0
	parityModeMask   uint8     = 0x30
	stopBitsMask     uint8     = 0x08
	charSizeMask     uint8     = 0x06
	clockPolarityBit uint8     = 0x01
)

type parityMode uint8

const (
	PARITY_DISABLED parityMode = 0x00
	PARITY_EVEN     parityMode = 0x20
	PARITY_ODD      parityMode = 0x30
)

type stopBits uint8

const (
	STOP_1 stopBits = 0x00
	STOP_2 stopBits = 0x08
)

type charSize uint8

const (
	CHAR_5 charSize = 0x00
	CHAR_6 charSize = 0x02
	CHAR_7 charSize = 0x04
	CHAR_8 charSize = 0x06
)

var parityModes = map[Parity]parityMode{
	ParityNone: PARITY_DISABLED,
	ParityEven: PARITY_EVEN,
	ParityOdd:  PARITY_ODD,
}

var charSizes = map[int]charSize{
	5: CHAR_5,
	6: CHAR_6,
	7: CHAR_7,
	8: CHAR_8,
}

// FrameFormat models UCSR0C.
type FrameFormat struct {
	mode          usartMode
	parity        parityMode
	stopBits      stopBits
	charSize      charSize
	clockPolarity uint8
}

func (obj *FrameFormat) GetAddress() hal.RegAddress {
	return board.UCSR0C
}

func (obj *FrameFormat) GetValue() uint8 {
	return uint8(obj.mode) | uint8(obj.parity) | uint8(obj.stopBits) | uint8(obj.charSize) | obj.clockPolarity
}

func (obj *FrameFormat) SetValue(value uint8) {
	obj.mode = usartMode(value & usartModeMask)
	obj.parity = parityMode(value & parityModeMask)
	obj.stopBits = stopBits(value & stopBitsMask)
	obj.charSize = charSize(value & charSizeMask)
	obj.clockPolarity = value & clockPolarityBit
}

// apply sets the fields described by cfg. Clock polarity is left as read.
func (obj *FrameFormat) apply(cfg Config) {
	obj.mode = MODE_ASYNC
	obj.parity = parityModes[cfg.Parity]
	obj.stopBits = STOP_1
	if cfg.StopBits == 2 {
		obj.stopBits = STOP_2
	}
	obj.charSize = charSizes[cfg.DataBits]
}
