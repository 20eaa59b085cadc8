package hal

// Module interface defines set of methods that are needed to communicate with the radio module
type Module interface {
	Init() error
	GetID(buf []byte) (int, error)
	GetPAC(buf []byte) (int, error)
	SendMessage(message []byte) error
}
