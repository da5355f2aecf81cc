//go:build windows
// +build windows

package midiwindows

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/leandrodaf/homados/sdk/contracts"
	"golang.org/x/sys/windows"
)

// Type definitions for MIDI handles
type HMIDIIN windows.Handle

// Constants for callback flags
const (
	CALLBACK_FUNCTION = 0x00030000 // Indicates that the callback is a function
	MIDI_IO_STATUS    = 0x00000020 // MIDI input/output status
)

// ErrOpenDevice is returned when midiInOpen or midiInStart fails.
var ErrOpenDevice = errors.New("error opening MIDI device")

// Struct representing MIDI input device capabilities
type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

// Struct representing MIDI output device capabilities
type midiOutCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	wTechnology    uint16
	wVoices        uint16
	wNotes         uint16
	wChannelMask   uint16
	dwSupport      uint32
}

// Load the winmm.dll library and required functions
var (
	winmm                 = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs  = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps  = winmm.NewProc("midiInGetDevCapsW")
	procMidiOutGetNumDevs = winmm.NewProc("midiOutGetNumDevs")
	procMidiOutGetDevCaps = winmm.NewProc("midiOutGetDevCapsW")
	procMidiInOpen        = winmm.NewProc("midiInOpen")
	procMidiInStart       = winmm.NewProc("midiInStart")
	procMidiInStop        = winmm.NewProc("midiInStop")
	procMidiInReset       = winmm.NewProc("midiInReset")
	procMidiInClose       = winmm.NewProc("midiInClose")
)

// Every open device shares one callback; dwInstance carries the subscription id.
var (
	callbackOnce  sync.Once
	callback      uintptr
	subscriptions sync.Map // uintptr -> *subscription
	nextID        atomic.Uintptr
)

// ClientMid manages MIDI on Windows
type ClientMid struct {
	logger contracts.Logger
	mu     sync.Mutex
}

// NewBackend creates a MIDI backend for Windows
func NewBackend(options *contracts.ClientOptions) (contracts.Backend, error) {
	options.Logger.Info("MIDI backend created", options.Logger.Field().String("backend", "winmm"))
	return &ClientMid{logger: options.Logger}, nil
}

// Inputs lists the available MIDI input devices
func (m *ClientMid) Inputs() ([]contracts.PortInfo, error) {
	r0, _, _ := procMidiInGetNumDevs.Call()
	numDevices := uint32(r0)

	ports := make([]contracts.PortInfo, 0, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiInCaps
		r1, _, _ := procMidiInGetDevCaps.Call(uintptr(i), uintptr(unsafe.Pointer(&caps)), unsafe.Sizeof(caps))
		if r1 != 0 {
			m.logger.Warn("Failed to get information for MIDI input", m.logger.Field().Int("device", int(i)))
			ports = append(ports, contracts.PortInfo{Name: fmt.Sprintf("MIDI input %d", i)})
			continue
		}
		ports = append(ports, portInfo(caps.szPname[:], caps.wMid, caps.wPid))
	}
	return ports, nil
}

// Outputs lists the available MIDI output devices
func (m *ClientMid) Outputs() ([]contracts.PortInfo, error) {
	r0, _, _ := procMidiOutGetNumDevs.Call()
	numDevices := uint32(r0)

	ports := make([]contracts.PortInfo, 0, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiOutCaps
		r1, _, _ := procMidiOutGetDevCaps.Call(uintptr(i), uintptr(unsafe.Pointer(&caps)), unsafe.Sizeof(caps))
		if r1 != 0 {
			m.logger.Warn("Failed to get information for MIDI output", m.logger.Field().Int("device", int(i)))
			ports = append(ports, contracts.PortInfo{Name: fmt.Sprintf("MIDI output %d", i)})
			continue
		}
		ports = append(ports, portInfo(caps.szPname[:], caps.wMid, caps.wPid))
	}
	return ports, nil
}

func portInfo(name []uint16, mid, pid uint16) contracts.PortInfo {
	deviceName := windows.UTF16ToString(name)
	return contracts.PortInfo{
		Name:         deviceName,
		EntityName:   deviceName,
		Manufacturer: fmt.Sprintf("MID: %d PID: %d", mid, pid),
	}
}

// Listen opens input device index and starts capturing
func (m *ClientMid) Listen(index int, handler contracts.MessageHandler) (contracts.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r0, _, _ := procMidiInGetNumDevs.Call()
	if index < 0 || index >= int(uint32(r0)) {
		return nil, fmt.Errorf("%w: input %d", contracts.ErrPortUnavailable, index)
	}

	callbackOnce.Do(func() {
		callback = windows.NewCallback(midiInCallback)
	})

	sub := &subscription{id: nextID.Add(1), logger: m.logger, handler: handler}
	subscriptions.Store(sub.id, sub)

	r1, _, err := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&sub.handle)),
		uintptr(index),
		callback,
		sub.id,
		uintptr(CALLBACK_FUNCTION|MIDI_IO_STATUS),
	)
	if r1 != 0 {
		subscriptions.Delete(sub.id)
		return nil, fmt.Errorf("%w: %w: device %d: %v", contracts.ErrConnection, ErrOpenDevice, index, err)
	}

	r1, _, err = procMidiInStart.Call(uintptr(sub.handle))
	if r1 != 0 {
		procMidiInClose.Call(uintptr(sub.handle))
		subscriptions.Delete(sub.id)
		return nil, fmt.Errorf("%w: %w: starting device %d: %v", contracts.ErrConnection, ErrOpenDevice, index, err)
	}

	m.logger.Info("MIDI input device connected", m.logger.Field().Int("deviceID", index))
	return sub, nil
}

// Close is a no-op; devices are closed by their subscriptions.
func (m *ClientMid) Close() error {
	return nil
}

// midiInCallback processes incoming MIDI messages
func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	value, ok := subscriptions.Load(dwInstance)
	if !ok {
		return 0
	}
	sub := value.(*subscription)

	if raw, ok := shortMessage(wMsg, dwParam1); ok {
		sub.handler(raw)
		return 0
	}

	switch wMsg {
	case MIM_OPEN:
		sub.logger.Debug("MIDI device opened")
	case MIM_CLOSE:
		sub.logger.Debug("MIDI device closed")
	case MIM_ERROR, MIM_LONGERROR:
		sub.logger.Error(fmt.Sprintf("MIDI error: msg=0x%X", wMsg))
	default:
		sub.logger.Warn(fmt.Sprintf("Unknown MIDI message: 0x%X", wMsg))
	}

	return 0
}

type subscription struct {
	id      uintptr
	handle  HMIDIIN
	logger  contracts.Logger
	handler contracts.MessageHandler
	once    sync.Once
	err     error
}

// Close stops capture and releases the device
func (s *subscription) Close() error {
	s.once.Do(func() {
		defer subscriptions.Delete(s.id)

		if r1, _, err := procMidiInStop.Call(uintptr(s.handle)); r1 != 0 {
			s.err = fmt.Errorf("failed to stop MIDI capture: %v", err)
			return
		}
		procMidiInReset.Call(uintptr(s.handle))
		if r1, _, err := procMidiInClose.Call(uintptr(s.handle)); r1 != 0 {
			s.err = fmt.Errorf("failed to close MIDI device: %v", err)
		}
	})
	return s.err
}
