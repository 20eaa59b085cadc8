// Package wisol is a driver for the Wisol Sigfox module. Every exchange powers
// the module up through its enable pin, writes one AT command, optionally reads
// one response line, and powers it down again.
package wisol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/mazen160/go-random"
	"github.com/mbalug7/go-nxtiot/pkg/hal"
)

// SettleDelay is the module's required wait after enabling it and before
// disabling it.
const SettleDelay = 1000 * time.Millisecond

type Module struct {
	port      hal.Port
	enablePin uint8
	serial    hal.Serial
	logger    *slog.Logger
	sleep     func(time.Duration)
}

func NewModule(port hal.Port, enablePin uint8, serial hal.Serial, logger *slog.Logger) *Module {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Module{
		port:      port,
		enablePin: enablePin,
		serial:    serial,
		logger:    logger,
		sleep:     time.Sleep,
	}
}

// Init configures the enable pin and the serial line. It must run before any
// other operation.
func (obj *Module) Init() error {
	err := obj.port.InitPin(obj.enablePin, hal.PinOutput)
	if err != nil {
		return fmt.Errorf("failed to init enable pin: %w", err)
	}
	err = obj.serial.Init()
	if err != nil {
		return fmt.Errorf("failed to init serial line: %w", err)
	}
	return nil
}

// GetID reads the device ID line into buf, see hal.Serial Read.
func (obj *Module) GetID(buf []byte) (int, error) {
	return obj.exchange(InfoIDCmd(), true, buf)
}

// GetPAC reads the porting access code line into buf.
func (obj *Module) GetPAC(buf []byte) (int, error) {
	return obj.exchange(InfoPACCmd(), true, buf)
}

// SendMessage sends the send frame command as it stands in the catalog. The
// message is not encoded into the command yet and no response is read.
func (obj *Module) SendMessage(message []byte) error {
	obj.logger.Debug("send frame without payload", slog.Int("payload_len", len(message)))
	_, err := obj.exchange(CmdSendFrame.Template(), false, nil)
	return err
}

// exchange runs one powered command and, if read is set, reads the response
// line into rsp. The enable pin is driven low on every return path. A read
// into an empty rsp fails without powering the module.
func (obj *Module) exchange(cmd string, read bool, rsp []byte) (n int, err error) {
	if read && len(rsp) == 0 {
		return 0, fmt.Errorf("failed to read response of %q: %w", strings.TrimSpace(cmd), hal.ErrShortBuffer)
	}
	log := obj.logger
	if log.Enabled(context.Background(), slog.LevelDebug) {
		log = log.With(slog.String("exchange", exchangeID()))
	}

	defer func() {
		obj.sleep(SettleDelay)
		lowErr := obj.port.WritePin(obj.enablePin, hal.PinLow)
		if lowErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to disable module: %w", lowErr))
		}
	}()

	err = obj.port.WritePin(obj.enablePin, hal.PinHigh)
	if err != nil {
		return 0, fmt.Errorf("failed to enable module: %w", err)
	}
	obj.sleep(SettleDelay)

	log.Debug("sending command", slog.String("command", strings.TrimSpace(cmd)))
	err = obj.serial.Send(cmd)
	if err != nil {
		return 0, fmt.Errorf("failed to send command %q: %w", strings.TrimSpace(cmd), err)
	}
	if !read {
		return 0, nil
	}

	n, err = obj.serial.Read(rsp)
	if err != nil {
		return n, fmt.Errorf("failed to read response: %w", err)
	}
	log.Debug("received response", slog.String("response", string(rsp[:n])))
	return n, nil
}

func exchangeID() string {
	id, err := random.String(8)
	if err != nil {
		return "-"
	}
	return id
}
