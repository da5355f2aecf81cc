//go:build cgo
// +build cgo

package midirtmidi

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/homados/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Error definitions for rtmidi port handling.
var (
	ErrOpenInputPort = errors.New("error opening input port")
	ErrListenInput   = errors.New("error listening to input port")
)

// Client talks to ALSA, CoreMIDI or WinMM through the rtmidi driver.
type Client struct {
	logger contracts.Logger
	driver *rtmididrv.Driver
	mu     sync.Mutex
}

// NewBackend initializes the rtmidi driver.
func NewBackend(options *contracts.ClientOptions) (contracts.Backend, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	options.Logger.Info("MIDI backend created", options.Logger.Field().String("backend", "rtmidi"))
	return &Client{logger: options.Logger, driver: driver}, nil
}

// Inputs lists the input ports known to the driver.
func (c *Client) Inputs() ([]contracts.PortInfo, error) {
	ins, err := c.driver.Ins()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI inputs: %w", err)
	}
	ports := make([]contracts.PortInfo, len(ins))
	for i, in := range ins {
		ports[i] = contracts.PortInfo{Name: in.String(), EntityName: in.String()}
	}
	return ports, nil
}

// Outputs lists the output ports known to the driver.
func (c *Client) Outputs() ([]contracts.PortInfo, error) {
	outs, err := c.driver.Outs()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI outputs: %w", err)
	}
	ports := make([]contracts.PortInfo, len(outs))
	for i, out := range outs {
		ports[i] = contracts.PortInfo{Name: out.String(), EntityName: out.String()}
	}
	return ports, nil
}

// Listen opens input index and forwards every message to handler.
func (c *Client) Listen(index int, handler contracts.MessageHandler) (contracts.Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ins, err := c.driver.Ins()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrConnection, err)
	}
	if index < 0 || index >= len(ins) {
		return nil, fmt.Errorf("%w: input %d", contracts.ErrPortUnavailable, index)
	}
	in := ins[index]

	if err := in.Open(); err != nil {
		return nil, fmt.Errorf("%w: %w: %v", contracts.ErrConnection, ErrOpenInputPort, err)
	}

	sub := &subscription{in: in}
	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		handler(msg.Bytes())
	}, midi.HandleError(func(listenErr error) {
		c.logger.Warn("MIDI listener error",
			c.logger.Field().String("port", in.String()),
			c.logger.Field().Error("error", listenErr))
	}))
	if err != nil {
		_ = in.Close()
		return nil, fmt.Errorf("%w: %w: %v", contracts.ErrConnection, ErrListenInput, err)
	}
	sub.stop = stop

	c.logger.Info("MIDI input port opened", c.logger.Field().String("port", in.String()))
	return sub, nil
}

// Close shuts the driver down.
func (c *Client) Close() error {
	return c.driver.Close()
}

type subscription struct {
	in   drivers.In
	stop func()
	once sync.Once
	err  error
}

func (s *subscription) Close() error {
	s.once.Do(func() {
		s.stop()
		s.err = s.in.Close()
	})
	return s.err
}
