//go:build windows
// +build windows

package pedalwindows

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/leandrodaf/midiguess/internal/pedal"
	"github.com/leandrodaf/midiguess/sdk/contracts"
	"golang.org/x/sys/windows"
)

const (
	callbackFunction = 0x00030000
	mimOpen          = 0x3C1
	mimClose         = 0x3C2
	mimData          = 0x3C3
	mimError         = 0x3C5
	mimLongError     = 0x3C6
)

// ErrNoDevices is returned when winmm reports no input devices.
var ErrNoDevices = errors.New("no MIDI input devices found")

type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

var (
	winmm                = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen       = winmm.NewProc("midiInOpen")
	procMidiInStart      = winmm.NewProc("midiInStart")
	procMidiInStop       = winmm.NewProc("midiInStop")
	procMidiInClose      = winmm.NewProc("midiInClose")
)

// Callbacks find their client through an id instead of a Go pointer.
var (
	callbackOnce sync.Once
	callback     uintptr
	nextID       atomic.Uintptr
	clients      sync.Map // uintptr -> *Client
)

// Client captures pedal input through winmm.
type Client struct {
	id     uintptr
	logger contracts.Logger
	filter pedal.Filter
	events atomic.Value // chan contracts.PedalEvent
	mu     sync.Mutex
	handle windows.Handle
	open   bool
}

// NewClient returns a client with no device selected.
func NewClient(opts *contracts.PedalOptions) (contracts.PedalClient, error) {
	callbackOnce.Do(func() { callback = windows.NewCallback(midiInProc) })
	c := &Client{
		id:     nextID.Add(1),
		logger: opts.Logger,
		filter: pedal.Filter(opts.Commands),
	}
	clients.Store(c.id, c)
	return c, nil
}

// ListDevices returns the winmm input devices.
func (c *Client) ListDevices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiInGetNumDevs.Call()
	n := uint32(r0)
	if n == 0 {
		c.logger.Warn(ErrNoDevices.Error())
		return nil, ErrNoDevices
	}
	devices := make([]contracts.DeviceInfo, 0, n)
	for i := uint32(0); i < n; i++ {
		var caps midiInCaps
		r1, _, _ := procMidiInGetDevCaps.Call(uintptr(i), uintptr(unsafe.Pointer(&caps)), unsafe.Sizeof(caps))
		if r1 != 0 {
			c.logger.Warn("failed to read MIDI device capabilities", c.logger.Field().Int("device", int(i)))
			continue
		}
		name := windows.UTF16ToString(caps.szPname[:])
		devices = append(devices, contracts.DeviceInfo{
			Name:         name,
			EntityName:   name,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		})
	}
	return devices, nil
}

// SelectDevice opens the device at deviceID, closing any previous one.
func (c *Client) SelectDevice(deviceID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open {
		if err := c.closeDevice(); err != nil {
			return fmt.Errorf("failed to close previous MIDI device: %w", err)
		}
	}
	r1, _, err := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&c.handle)),
		uintptr(deviceID),
		callback,
		c.id,
		callbackFunction,
	)
	if r1 != 0 {
		return fmt.Errorf("failed to open MIDI device %d: %v", deviceID, err)
	}
	c.open = true
	c.logger.Info("pedal connected", c.logger.Field().Int("deviceID", deviceID))
	return nil
}

// StartCapture forwards events to eventChannel until Stop.
func (c *Client) StartCapture(eventChannel chan contracts.PedalEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		c.logger.Error("cannot start capture: no MIDI device selected")
		return
	}
	c.events.Store(eventChannel)
	if r1, _, err := procMidiInStart.Call(uintptr(c.handle)); r1 != 0 {
		c.logger.Error("failed to start MIDI capture", c.logger.Field().Error("error", err))
		return
	}
	c.logger.Debug("pedal capture started")
}

// Stop ends capture and closes the device.
func (c *Client) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clients.Delete(c.id)
	if !c.open {
		return nil
	}
	if err := c.closeDevice(); err != nil {
		return fmt.Errorf("failed to stop MIDI capture: %w", err)
	}
	c.logger.Debug("pedal capture stopped")
	return nil
}

func (c *Client) closeDevice() error {
	if r1, _, err := procMidiInStop.Call(uintptr(c.handle)); r1 != 0 {
		return err
	}
	if r1, _, err := procMidiInClose.Call(uintptr(c.handle)); r1 != 0 {
		return err
	}
	c.open = false
	c.handle = 0
	c.events.Store(make(chan contracts.PedalEvent))
	return nil
}

func midiInProc(_, msg, instance, param1, _ uintptr) uintptr {
	v, ok := clients.Load(instance)
	if !ok {
		return 0
	}
	c := v.(*Client)
	switch msg {
	case mimOpen, mimClose:
		c.logger.Debug("MIDI device state changed", c.logger.Field().Uint64("msg", uint64(msg)))
	case mimData:
		ev, ok := pedal.Decode(byte(param1), byte(param1>>8), byte(param1>>16), time.Now())
		if !ok || !c.filter.Allows(ev.Command) {
			return 0
		}
		if ch, _ := c.events.Load().(chan contracts.PedalEvent); ch != nil {
			pedal.Forward(ch, ev, c.logger)
		}
	case mimError, mimLongError:
		c.logger.Error("MIDI input error", c.logger.Field().Uint64("msg", uint64(msg)))
	}
	return 0
}
