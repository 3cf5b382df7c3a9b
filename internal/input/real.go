//go:build linux

package input

import (
	"fmt"

	"github.com/sweeney/ble-joystick/internal/logic"
	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"
)

// supply is the joystick potentiometer supply. A fully deflected axis reads
// this voltage and maps to logic.AxisMax.
const supply = 3300 * physic.MilliVolt

// Config selects the hardware the RealReader talks to.
type Config struct {
	I2CBus    string // empty = first available bus
	ChannelX  int    // ADS1115 single-ended channel 0..3
	ChannelY  int
	PinButton int // BCM line, active low with pull-up
}

// RealReader samples actual hardware.
type RealReader struct {
	bus    i2c.BusCloser
	x      ads1x15.PinADC
	y      ads1x15.PinADC
	chip   *gpiocdev.Chip
	button *gpiocdev.Line
}

var channels = []ads1x15.Channel{
	ads1x15.Channel0,
	ads1x15.Channel1,
	ads1x15.Channel2,
	ads1x15.Channel3,
}

// NewRealReader opens the ADC and the button line.
func NewRealReader(cfg Config) (*RealReader, error) {
	if cfg.ChannelX < 0 || cfg.ChannelX >= len(channels) || cfg.ChannelY < 0 || cfg.ChannelY >= len(channels) {
		return nil, fmt.Errorf("adc channels x=%d y=%d out of range 0..3", cfg.ChannelX, cfg.ChannelY)
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	r := &RealReader{}
	var err error

	r.bus, err = i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", cfg.I2CBus, err)
	}

	adc, err := ads1x15.NewADS1115(r.bus, &ads1x15.DefaultOpts)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("init ads1115: %w", err)
	}

	r.x, err = adc.PinForChannel(channels[cfg.ChannelX], supply, 475*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("configure x channel %d: %w", cfg.ChannelX, err)
	}
	r.y, err = adc.PinForChannel(channels[cfg.ChannelY], supply, 475*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("configure y channel %d: %w", cfg.ChannelY, err)
	}

	r.chip, err = gpiocdev.NewChip("gpiochip0")
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	// Joystick switch shorts to ground when pressed.
	r.button, err = r.chip.RequestLine(cfg.PinButton, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("request button pin %d: %w", cfg.PinButton, err)
	}

	return r, nil
}

// Read samples both axes and the button.
func (r *RealReader) Read() (logic.Snapshot, error) {
	x, err := readAxis(r.x)
	if err != nil {
		return logic.Snapshot{}, fmt.Errorf("read x axis: %w", err)
	}
	y, err := readAxis(r.y)
	if err != nil {
		return logic.Snapshot{}, fmt.Errorf("read y axis: %w", err)
	}
	raw, err := r.button.Value()
	if err != nil {
		return logic.Snapshot{}, fmt.Errorf("read button pin: %w", err)
	}

	return logic.Snapshot{X: x, Y: y, Button: raw == 0}, nil
}

func readAxis(pin ads1x15.PinADC) (int, error) {
	s, err := pin.Read()
	if err != nil {
		return 0, err
	}
	return scale(s.V), nil
}

// scale maps a measured voltage onto 0..logic.AxisMax.
func scale(v physic.ElectricPotential) int {
	return logic.Clamp(int(int64(v) * logic.AxisMax / int64(supply)))
}

// Close releases the ADC channels, the button line and the buses.
func (r *RealReader) Close() error {
	var errs []error

	for _, pin := range []ads1x15.PinADC{r.x, r.y} {
		if pin == nil {
			continue
		}
		if err := pin.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("halt adc pin: %w", err))
		}
	}
	if r.button != nil {
		if err := r.button.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close button pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if r.bus != nil {
		if err := r.bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close i2c bus: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
