package link

import (
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/sweeney/ble-joystick/internal/logic"
	"github.com/sweeney/ble-joystick/internal/metrics"
)

// Phase is the lifecycle stage of the link.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAdvertising
	PhaseConnected
	PhaseShuttingDown
)

func (p Phase) String() string {
	switch p {
	case PhaseAdvertising:
		return "ADVERTISING"
	case PhaseConnected:
		return "CONNECTED"
	case PhaseShuttingDown:
		return "SHUTTING_DOWN"
	default:
		return "IDLE"
	}
}

// State is an immutable view of the link. Handle is only set while
// Connected.
type State struct {
	Phase  Phase
	Handle Handle
}

// Config holds the fixed identity of the peripheral.
type Config struct {
	Name     string
	Interval time.Duration
}

// DefaultConfig is the name and advertising interval used unless overridden.
var DefaultConfig = Config{
	Name:     "GO-JOY",
	Interval: 30 * time.Millisecond,
}

// Controller owns the connection state. Radio callbacks and the poll loop
// communicate only through it.
//
// The state is published as a single pointer so a reader always sees a
// phase and handle that belong together. A Send racing a disconnect may
// still pick up a handle that has just gone away. The notify then fails and
// Send returns false, and the next transition sends the latest command.
type Controller struct {
	radio Radio
	cfg   Config

	state    atomic.Pointer[State]
	started  atomic.Bool
	shutdown atomic.Bool
	epoch    atomic.Uint64
}

// New creates an idle Controller.
func New(radio Radio, cfg Config) *Controller {
	c := &Controller{radio: radio, cfg: cfg}
	c.setState(State{Phase: PhaseIdle})
	return c
}

// Start enables the radio, registers the service and begins advertising.
// It may be called once per wake cycle. On failure the controller stays
// idle and the radio should be considered unusable until the next wake.
func (c *Controller) Start() error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	data, err := AdvertisingData(c.cfg.Name)
	if err != nil {
		return fmt.Errorf("advertising data for %q: %w", c.cfg.Name, err)
	}

	c.radio.SetConnectHandler(func(h Handle, connected bool) {
		if connected {
			c.OnConnect(h)
		} else {
			c.OnDisconnect(h)
		}
	})

	if err := c.radio.Enable(); err != nil {
		return fmt.Errorf("enable radio: %w", err)
	}

	svc := Service{
		UUID:     ServiceUUID,
		CharUUID: TxCharUUID,
		Initial:  logic.CommandCenter.Payload(),
	}
	if err := c.radio.Register(svc); err != nil {
		return fmt.Errorf("register service: %w", err)
	}

	// Publish Advertising first so a connection that lands immediately
	// finds the controller ready for it.
	c.setState(State{Phase: PhaseAdvertising})
	if err := c.radio.StartAdvertising(Advertisement{Name: c.cfg.Name, Interval: c.cfg.Interval, Data: data}); err != nil {
		c.setState(State{Phase: PhaseIdle})
		return fmt.Errorf("start advertising: %w", err)
	}

	log.Printf("link: advertising as %q", c.cfg.Name)
	return nil
}

// OnConnect records a new client connection. Only one client is accepted.
func (c *Controller) OnConnect(h Handle) {
	for {
		cur := c.state.Load()
		if c.shutdown.Load() || cur.Phase != PhaseAdvertising {
			if cur.Phase == PhaseConnected && cur.Handle != h {
				log.Printf("link: refusing second client %s, already connected to %s", h, cur.Handle)
				// A subscribed client would otherwise receive every notification.
				if err := c.radio.Disconnect(h); err != nil {
					log.Printf("link: disconnect refused client %s: %v", h, err)
				}
			}
			return
		}
		next := &State{Phase: PhaseConnected, Handle: h}
		if c.state.CompareAndSwap(cur, next) {
			break
		}
	}

	c.epoch.Add(1)
	metrics.LinkConnections.Inc()
	metrics.LinkPhase.Set(float64(PhaseConnected))
	log.Printf("link: connected %s", h)

	if err := c.radio.StopAdvertising(); err != nil {
		log.Printf("link: stop advertising: %v", err)
	}
}

// OnDisconnect returns to advertising, unless a shutdown is in progress.
// Disconnects for a handle other than the current one are ignored.
func (c *Controller) OnDisconnect(h Handle) {
	for {
		cur := c.state.Load()
		if cur.Phase != PhaseConnected || cur.Handle != h {
			return
		}
		if c.shutdown.Load() {
			return
		}
		next := &State{Phase: PhaseAdvertising}
		if c.state.CompareAndSwap(cur, next) {
			break
		}
	}

	metrics.LinkDisconnections.Inc()
	metrics.LinkPhase.Set(float64(PhaseAdvertising))
	log.Printf("link: disconnected %s, advertising again", h)

	if c.shutdown.Load() {
		return
	}
	data, _ := AdvertisingData(c.cfg.Name)
	if err := c.radio.StartAdvertising(Advertisement{Name: c.cfg.Name, Interval: c.cfg.Interval, Data: data}); err != nil {
		log.Printf("link: restart advertising: %v", err)
	}
}

// Send notifies cmd to the connected client. It returns false if there is
// no client or the radio rejected the notification.
func (c *Controller) Send(cmd logic.Command) bool {
	st := c.state.Load()
	if st.Phase != PhaseConnected {
		metrics.LinkSendFailures.WithLabelValues("not_connected").Inc()
		return false
	}

	if err := c.radio.Notify(st.Handle, cmd.Payload()); err != nil {
		log.Printf("link: notify %s to %s: %v", cmd, st.Handle, err)
		metrics.LinkSendFailures.WithLabelValues("notify").Inc()
		return false
	}

	metrics.LinkCommandsSent.WithLabelValues(string(cmd)).Inc()
	return true
}

// Stop disconnects any client, stops advertising and disables the radio.
// After Stop the callbacks no longer resurrect advertising. Calling Stop
// again is a no-op.
func (c *Controller) Stop() error {
	if c.shutdown.Swap(true) {
		return nil
	}

	prev := c.state.Swap(&State{Phase: PhaseShuttingDown})
	metrics.LinkPhase.Set(float64(PhaseShuttingDown))

	var errs []error
	if prev.Phase == PhaseConnected {
		if err := c.radio.Disconnect(prev.Handle); err != nil {
			errs = append(errs, fmt.Errorf("disconnect %s: %w", prev.Handle, err))
		}
	}
	if prev.Phase != PhaseIdle {
		if err := c.radio.StopAdvertising(); err != nil {
			errs = append(errs, fmt.Errorf("stop advertising: %w", err))
		}
	}
	if err := c.radio.Disable(); err != nil {
		errs = append(errs, fmt.Errorf("disable radio: %w", err))
	}

	c.setState(State{Phase: PhaseIdle})
	log.Printf("link: stopped")
	return errors.Join(errs...)
}

// State returns the current link state.
func (c *Controller) State() State {
	return *c.state.Load()
}

// Epoch counts accepted connections. It changes every time a client
// connects, which the activity loop treats as operator activity.
func (c *Controller) Epoch() uint64 {
	return c.epoch.Load()
}

func (c *Controller) setState(s State) {
	c.state.Store(&s)
	metrics.LinkPhase.Set(float64(s.Phase))
}
