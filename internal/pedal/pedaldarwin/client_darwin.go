//go:build darwin
// +build darwin

package pedaldarwin

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leandrodaf/midiguess/internal/pedal"
	"github.com/leandrodaf/midiguess/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// Error definitions for CoreMIDI connection issues.
var (
	ErrNoDevices       = errors.New("no MIDI input devices found")
	ErrInvalidDevice   = errors.New("invalid MIDI input device")
	ErrConnection      = errors.New("error connecting to MIDI input device")
	ErrCreateInputPort = errors.New("error creating input port")
)

// portConnection is the connection returned by coremidi.InputPort.Connect.
type portConnection interface {
	Disconnect()
}

// Client captures pedal input through CoreMIDI.
type Client struct {
	logger    contracts.Logger
	filter    pedal.Filter
	events    atomic.Value // chan contracts.PedalEvent
	client    coremidi.Client
	inputPort coremidi.InputPort
	portConn  portConnection
	mu        sync.Mutex
	capturing bool
	wg        sync.WaitGroup
	stopOnce  sync.Once
}

// NewClient registers a CoreMIDI client under opts.ClientName.
func NewClient(opts *contracts.PedalOptions) (contracts.PedalClient, error) {
	client, err := coremidi.NewClient(opts.ClientName)
	if err != nil {
		return nil, fmt.Errorf("failed to create CoreMIDI client: %w", err)
	}
	opts.Logger.Debug("CoreMIDI client created", opts.Logger.Field().String("name", opts.ClientName))
	return &Client{
		logger: opts.Logger,
		filter: pedal.Filter(opts.Commands),
		client: client,
	}, nil
}

// ListDevices returns the available MIDI sources.
func (c *Client) ListDevices() ([]contracts.DeviceInfo, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI sources: %w", err)
	}
	if len(sources) == 0 {
		c.logger.Warn(ErrNoDevices.Error())
		return nil, ErrNoDevices
	}
	devices := make([]contracts.DeviceInfo, len(sources))
	for i, source := range sources {
		entity := source.Entity()
		devices[i] = contracts.DeviceInfo{
			Name:         source.Name(),
			EntityName:   entity.Name(),
			Manufacturer: entity.Manufacturer(),
		}
	}
	return devices, nil
}

// SelectDevice connects to the source at deviceID, dropping any previous
// connection.
func (c *Client) SelectDevice(deviceID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sources, err := coremidi.AllSources()
	if err != nil {
		return fmt.Errorf("error retrieving MIDI sources: %w", err)
	}
	if deviceID < 0 || deviceID >= len(sources) {
		c.logger.Error(ErrInvalidDevice.Error(), c.logger.Field().Int("deviceID", deviceID))
		return fmt.Errorf("%w: %d", ErrInvalidDevice, deviceID)
	}
	if c.portConn != nil {
		c.portConn.Disconnect()
		c.portConn = nil
	}

	source := sources[deviceID]
	c.inputPort, err = coremidi.NewInputPort(c.client, "Pedal Input", c.handlePacket)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCreateInputPort, err)
	}
	c.portConn, err = c.inputPort.Connect(source)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	c.logger.Info("pedal connected",
		c.logger.Field().Int("deviceID", deviceID),
		c.logger.Field().String("deviceName", source.Name()))
	return nil
}

func (c *Client) handlePacket(_ coremidi.Source, packet coremidi.Packet) {
	c.wg.Add(1)
	defer c.wg.Done()

	ch, _ := c.events.Load().(chan contracts.PedalEvent)
	if ch == nil {
		return
	}
	now := time.Now()
	for _, msg := range pedal.Split(packet.Data) {
		ev, ok := pedal.Decode(msg[0], msg[1], msg[2], now)
		if !ok || !c.filter.Allows(ev.Command) {
			continue
		}
		pedal.Forward(ch, ev, c.logger)
	}
}

// StartCapture forwards events to eventChannel until Stop.
func (c *Client) StartCapture(eventChannel chan contracts.PedalEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if eventChannel == nil {
		c.logger.Error("StartCapture called with nil event channel")
		return
	}
	if c.capturing {
		c.logger.Warn("pedal capture already started; replacing event channel")
	}
	c.events.Store(eventChannel)
	c.capturing = true
	c.logger.Debug("pedal capture started")
}

// Stop disconnects the source and waits for in-flight packets. Only the
// first call has an effect.
func (c *Client) Stop() error {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.portConn != nil {
			c.portConn.Disconnect()
			c.portConn = nil
		}
		c.events.Store(make(chan contracts.PedalEvent))
		c.capturing = false
		c.wg.Wait()
		c.logger.Debug("pedal capture stopped")
	})
	return nil
}
