// Command ble-joystick samples a joystick and sends its direction to a
// single BLE client, suspending between bursts of activity.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sweeney/ble-joystick/internal/controller"
	"github.com/sweeney/ble-joystick/internal/input"
	"github.com/sweeney/ble-joystick/internal/link"
	"github.com/sweeney/ble-joystick/internal/logic"
	"github.com/sweeney/ble-joystick/internal/mqtt"
	"github.com/sweeney/ble-joystick/internal/power"
	"github.com/sweeney/ble-joystick/internal/status"
	"github.com/sweeney/ble-joystick/internal/web"
)

type options struct {
	poll           time.Duration
	settle         time.Duration
	idle           time.Duration
	budget         time.Duration
	low            int
	high           int
	leftAsSelect   bool
	buttonActivity bool
	name           string
	pinButton      int
	i2cBus         string
	adcX           int
	adcY           int
	rtc            bool
	httpAddr       string
	broker         string
	wifiOff        bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if err := run(opts); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func parseFlags(args []string) (options, error) {
	def := controller.DefaultConfig()
	var o options

	fs := flag.NewFlagSet("ble-joystick", flag.ContinueOnError)
	fs.DurationVar(&o.poll, "poll", 20*time.Millisecond, "Input polling interval")
	fs.DurationVar(&o.settle, "settle", def.Settle, "Pause after each sent command")
	fs.DurationVar(&o.idle, "idle", def.IdleTimeout, "Inactivity before suspending")
	fs.DurationVar(&o.budget, "budget", def.Budget, "Suspend duration before the next wake check")
	fs.IntVar(&o.low, "low", def.Thresholds.Low, "Dead zone lower bound (0..4095)")
	fs.IntVar(&o.high, "high", def.Thresholds.High, "Dead zone upper bound (0..4095)")
	fs.BoolVar(&o.leftAsSelect, "left-as-select", false, "Send SELECT for a left deflection")
	fs.BoolVar(&o.buttonActivity, "button-activity", def.Variant.ButtonIsActivity, "Held button keeps the device awake")
	fs.StringVar(&o.name, "name", link.DefaultConfig.Name, "Advertised device name")
	fs.IntVar(&o.pinButton, "pin-button", input.DefaultPinButton, "BCM pin number for the button")
	fs.StringVar(&o.i2cBus, "i2c-bus", "", "I2C bus for the ADC (empty for the first bus)")
	fs.IntVar(&o.adcX, "adc-x", input.DefaultChannelX, "ADC channel for the X axis")
	fs.IntVar(&o.adcY, "adc-y", input.DefaultChannelY, "ADC channel for the Y axis")
	fs.BoolVar(&o.rtc, "rtc", false, "Suspend to RAM with an RTC wake alarm instead of sleeping")
	fs.StringVar(&o.httpAddr, "http", "", "HTTP status address (empty to disable)")
	fs.StringVar(&o.broker, "broker", "", "MQTT broker address (empty to disable)")
	fs.BoolVar(&o.wifiOff, "wifi-off", false, "Soft-block Wi-Fi through rfkill (cannot be combined with --http or --broker)")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if err := o.validate(); err != nil {
		return options{}, err
	}
	return o, nil
}

func (o options) validate() error {
	if o.poll <= 0 {
		return fmt.Errorf("--poll must be positive, got %v", o.poll)
	}
	if o.settle < 0 {
		return fmt.Errorf("--settle must not be negative, got %v", o.settle)
	}
	if o.idle <= 0 {
		return fmt.Errorf("--idle must be positive, got %v", o.idle)
	}
	if o.budget <= 0 {
		return fmt.Errorf("--budget must be positive, got %v", o.budget)
	}
	if o.low < 0 || o.high > logic.AxisMax || o.low >= o.high {
		return fmt.Errorf("dead zone %d..%d must satisfy 0 <= low < high <= %d", o.low, o.high, logic.AxisMax)
	}
	if o.name == "" {
		return errors.New("--name must not be empty")
	}
	if _, err := link.AdvertisingData(o.name); err != nil {
		return fmt.Errorf("--name %q: %w", o.name, err)
	}
	if o.adcX == o.adcY {
		return fmt.Errorf("--adc-x and --adc-y must differ, both %d", o.adcX)
	}
	if o.pinButton < 0 {
		return fmt.Errorf("--pin-button must not be negative, got %d", o.pinButton)
	}
	if o.wifiOff && (o.httpAddr != "" || o.broker != "") {
		return errors.New("--wifi-off cannot be combined with --http or --broker")
	}
	return nil
}

func (o options) loopConfig() controller.Config {
	cfg := controller.DefaultConfig()
	cfg.Thresholds = logic.Thresholds{Low: o.low, High: o.high}
	cfg.Variant = logic.Variant{LeftAsSelect: o.leftAsSelect, ButtonIsActivity: o.buttonActivity}
	cfg.Settle = o.settle
	cfg.IdleTimeout = o.idle
	cfg.Budget = o.budget
	return cfg
}

func (o options) statusConfig(cause power.BootCause) status.Config {
	return status.Config{
		PollMs:        o.poll.Milliseconds(),
		SettleMs:      o.settle.Milliseconds(),
		IdleTimeoutMs: o.idle.Milliseconds(),
		BudgetMs:      o.budget.Milliseconds(),
		Low:           o.low,
		High:          o.high,
		LeftAsSelect:  o.leftAsSelect,
		ButtonWakes:   o.buttonActivity,
		Name:          o.name,
		BootCause:     cause.String(),
		Broker:        o.broker,
		HTTPAddr:      o.httpAddr,
	}
}

func run(opts options) error {
	cause := power.ReadBootCause()

	restarter, err := power.NewRestarter(opts.rtc)
	if err != nil {
		return fmt.Errorf("init suspend: %w", err)
	}

	reader, err := input.NewRealReader(input.Config{
		I2CBus:    opts.i2cBus,
		ChannelX:  opts.adcX,
		ChannelY:  opts.adcY,
		PinButton: opts.pinButton,
	})
	if err != nil {
		return fmt.Errorf("init input: %w", err)
	}

	var newPublisher func() (mqtt.Publisher, error)
	if opts.broker != "" {
		newPublisher = func() (mqtt.Publisher, error) {
			return mqtt.NewRealPublisher(opts.broker, "ble-joystick-"+opts.name)
		}
	}

	var blockWLAN func() (int, error)
	if opts.wifiOff {
		blockWLAN = func() (int, error) { return power.BlockWLAN(power.DefaultRfkillRoot) }
	}

	ticker := time.NewTicker(opts.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return wake(opts, cause, wakeDeps{
		Reader:       reader,
		Radio:        link.NewBlueZRadio(),
		Suspender:    restarter,
		NewPublisher: newPublisher,
		BlockWLAN:    blockWLAN,
		Tick:         ticker.C,
		Sig:          sigCh,
	})
}

// wakeDeps are the platform pieces of one wake cycle.
type wakeDeps struct {
	Reader    input.Reader
	Radio     link.Radio
	Suspender power.Suspender

	// NewPublisher is nil when the MQTT mirror is disabled.
	NewPublisher func() (mqtt.Publisher, error)

	// BlockWLAN is nil unless Wi-Fi should be switched off.
	BlockWLAN func() (int, error)

	Tick <-chan time.Time
	Sig  <-chan os.Signal

	Now   func() time.Time
	Sleep func(time.Duration)
}

// closeFirst runs its closers once, before the wrapped suspender. A
// successful suspend replaces the process, so deferred calls never run.
type closeFirst struct {
	power.Suspender
	close func()
}

func (s closeFirst) Suspend(budget time.Duration) error {
	s.close()
	return s.Suspender.Suspend(budget)
}

// wake runs one wake cycle: the boot gate, then link start-up and the
// activity loop. It returns nil after a signal, otherwise the result of the
// final suspend.
func wake(opts options, cause power.BootCause, d wakeDeps) error {
	now := d.Now
	if now == nil {
		now = time.Now
	}

	var (
		closers []func()
		once    sync.Once
	)
	closeAll := func() {
		once.Do(func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		})
	}
	defer closeAll()
	closers = append(closers, func() { d.Reader.Close() })
	sus := closeFirst{Suspender: d.Suspender, close: closeAll}

	cfg := opts.loopConfig()
	log.Printf("boot: cause=%s", cause)

	first, err := d.Reader.Read()
	if err != nil {
		// An unreadable stick shows no activity.
		log.Printf("gate: input read error: %v", err)
		mid := (cfg.Thresholds.Low + cfg.Thresholds.High) / 2
		first = logic.Snapshot{X: mid, Y: mid}
	}
	if err := power.Gate(cause, first, cfg.Thresholds, cfg.Variant, cfg.Budget, sus); err != nil {
		return fmt.Errorf("gate suspend: %w", err)
	}

	if d.BlockWLAN != nil {
		if n, err := d.BlockWLAN(); err != nil {
			log.Printf("wifi: %v", err)
		} else {
			log.Printf("wifi: blocked %d switch(es)", n)
		}
	}

	tracker := status.NewTracker(now(), opts.statusConfig(cause))

	if opts.httpAddr != "" {
		srv := web.New(opts.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		closers = append(closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			srv.Shutdown(ctx)
		})
		log.Printf("http status server listening on %s", opts.httpAddr)
	}

	var (
		publisher  mqtt.Publisher
		mqttStatus mqtt.ConnectionStatus
	)
	if d.NewPublisher != nil {
		p, err := d.NewPublisher()
		if err != nil {
			log.Printf("mqtt disabled: %v", err)
		} else {
			publisher = p
			mqttStatus, _ = p.(mqtt.ConnectionStatus)
			closers = append(closers, func() { p.Close() })
			ev := mqtt.SystemEvent{Timestamp: now(), Event: "WAKE", BootCause: cause.String()}
			if err := p.PublishSystem(ev); err != nil {
				log.Printf("failed to publish wake event: %v", err)
			}
		}
	}

	lc := link.New(d.Radio, link.Config{Name: opts.name, Interval: link.DefaultConfig.Interval})
	if err := lc.Start(); err != nil {
		log.Printf("link start failed, suspending: %v", err)
		if publisher != nil {
			ev := mqtt.SystemEvent{Timestamp: now(), Event: "SUSPEND", Reason: "RADIO_FAILURE"}
			if err := publisher.PublishSystem(ev); err != nil {
				log.Printf("failed to publish suspend event: %v", err)
			}
		}
		if err := lc.Stop(); err != nil {
			log.Printf("link stop: %v", err)
		}
		return sus.Suspend(cfg.Budget)
	}

	log.Printf("started: poll=%v settle=%v idle=%v budget=%v name=%q", opts.poll, cfg.Settle, cfg.IdleTimeout, cfg.Budget, opts.name)

	return controller.Run(cfg, controller.Deps{
		Reader:     d.Reader,
		Link:       lc,
		Suspender:  sus,
		Tracker:    tracker,
		Publisher:  publisher,
		MQTTStatus: mqttStatus,
		Now:        d.Now,
		Sleep:      d.Sleep,
	}, d.Tick, d.Sig)
}
