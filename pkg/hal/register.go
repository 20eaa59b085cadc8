package hal

import "sync"

type RegAddress uint8

// Register is a single 8-bit memory mapped register.
type Register interface {
	GetAddress() RegAddress
	GetValue() uint8
	SetValue(value uint8)
}

// RegisterFile resolves register addresses, e.g. the AVR data space.
type RegisterFile interface {
	Register(addr RegAddress) Register
}

// SetBits sets mask bits with a read-modify-write.
func SetBits(reg Register, mask uint8) {
	reg.SetValue(reg.GetValue() | mask)
}

// ClearBits clears mask bits with a read-modify-write.
func ClearBits(reg Register, mask uint8) {
	reg.SetValue(reg.GetValue() &^ mask)
}

// HasBits reports whether any of the mask bits is set.
func HasBits(reg Register, mask uint8) bool {
	return reg.GetValue()&mask != 0
}

// Bit returns the mask for bit n, the avr-libc _BV macro.
func Bit(n uint8) uint8 {
	return 1 << n
}

// Memory is an in-memory register file covering the whole 8-bit address space.
// It stands in for MMIO in tests and simulations.
type Memory struct {
	mu    sync.Mutex
	cells [256]uint8
}

func NewMemory() *Memory {
	return &Memory{}
}

func (obj *Memory) Register(addr RegAddress) Register {
	return &memRegister{mem: obj, addr: addr}
}

// Peek reads a cell without going through a Register.
func (obj *Memory) Peek(addr RegAddress) uint8 {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	return obj.cells[addr]
}

// Poke writes a cell without going through a Register.
func (obj *Memory) Poke(addr RegAddress, value uint8) {
	obj.mu.Lock()
	defer obj.mu.Unlock()
	obj.cells[addr] = value
}

type memRegister struct {
	mem  *Memory
	addr RegAddress
}

func (obj *memRegister) GetAddress() RegAddress {
	return obj.addr
}

func (obj *memRegister) GetValue() uint8 {
	return obj.mem.Peek(obj.addr)
}

func (obj *memRegister) SetValue(value uint8) {
	obj.mem.Poke(obj.addr, value)
}
