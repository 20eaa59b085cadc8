//go:build tinygo && avr

package hal

import (
	"runtime/volatile"
	"unsafe"
)

// MMIO is the AVR data space. Every access is volatile.
type MMIO struct{}

func (MMIO) Register(addr RegAddress) Register {
	return &mmioRegister{
		addr: addr,
		reg:  (*volatile.Register8)(unsafe.Pointer(uintptr(addr))),
	}
}

type mmioRegister struct {
	addr RegAddress
	reg  *volatile.Register8
}

func (obj *mmioRegister) GetAddress() RegAddress {
	return obj.addr
}

func (obj *mmioRegister) GetValue() uint8 {
	return obj.reg.Get()
}

func (obj *mmioRegister) SetValue(value uint8) {
	obj.reg.Set(value)
}
