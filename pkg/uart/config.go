package uart

import "fmt"

type Parity uint8

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

func (p Parity) String() string {
	switch p {
	case ParityEven:
		return "even"
	case ParityOdd:
		return "odd"
	default:
		return "none"
	}
}

// Config is the serial frame format of the line.
type Config struct {
	BaudRate int
	DataBits int
	StopBits int
	Parity   Parity
}

// DefaultConfig is the 9600 8N1 format the Wisol module talks.
func DefaultConfig() Config {
	return Config{
		BaudRate: 9600,
		DataBits: 8,
		StopBits: 1,
		Parity:   ParityNone,
	}
}

func (c Config) String() string {
	return fmt.Sprintf("%d %d%c%d", c.BaudRate, c.DataBits, "NEO"[c.Parity%3], c.StopBits)
}

func (c Config) validate() error {
	if c.BaudRate <= 0 {
		return fmt.Errorf("invalid baud rate: %d", c.BaudRate)
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return fmt.Errorf("unsupported data bits: %d", c.DataBits)
	}
	if c.StopBits != 1 && c.StopBits != 2 {
		return fmt.Errorf("unsupported stop bits: %d", c.StopBits)
	}
	if c.Parity > ParityOdd {
		return fmt.Errorf("unsupported parity: %d", c.Parity)
	}
	return nil
}
