// Package controller runs the activity loop of a wake cycle: it polls the
// input, sends command transitions over the link and suspends the device
// once the operator has gone quiet.
package controller

import (
	"log"
	"os"
	"syscall"
	"time"

	"github.com/sweeney/ble-joystick/internal/input"
	"github.com/sweeney/ble-joystick/internal/link"
	"github.com/sweeney/ble-joystick/internal/logic"
	"github.com/sweeney/ble-joystick/internal/metrics"
	"github.com/sweeney/ble-joystick/internal/mqtt"
	"github.com/sweeney/ble-joystick/internal/power"
	"github.com/sweeney/ble-joystick/internal/status"
)

// Config holds the timing and classification settings of the loop.
type Config struct {
	Thresholds  logic.Thresholds
	Variant     logic.Variant
	Settle      time.Duration
	IdleTimeout time.Duration
	StopGrace   time.Duration
	Budget      time.Duration
}

// DefaultConfig returns the settings used when no flags override them.
func DefaultConfig() Config {
	return Config{
		Thresholds:  logic.DefaultThresholds,
		Variant:     logic.DefaultVariant,
		Settle:      150 * time.Millisecond,
		IdleTimeout: 15 * time.Second,
		StopGrace:   50 * time.Millisecond,
		Budget:      power.DefaultBudget,
	}
}

// Link is the part of link.Controller the loop drives.
type Link interface {
	Send(cmd logic.Command) bool
	Stop() error
	Epoch() uint64
	State() link.State
}

// Deps are the collaborators of Run. Tracker, Publisher and MQTTStatus are
// optional.
type Deps struct {
	Reader    input.Reader
	Link      Link
	Suspender power.Suspender

	Tracker    *status.Tracker
	Publisher  mqtt.Publisher
	MQTTStatus mqtt.ConnectionStatus

	Now   func() time.Time
	Sleep func(time.Duration)
}

// Run polls on every tick until the idle timeout elapses or a signal
// arrives. On idle it stops the link and returns the suspender's result,
// which for a real suspender means it does not return at all. On a signal
// it stops the link and returns nil.
func Run(cfg Config, deps Deps, tick <-chan time.Time, sig <-chan os.Signal) error {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	sleep := deps.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	tracker := logic.NewTracker(cfg.Thresholds, cfg.Variant, cfg.IdleTimeout, now())

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			if err := deps.Link.Stop(); err != nil {
				log.Printf("link stop: %v", err)
			}
			publishSystem(deps.Publisher, mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName(s),
			})
			return nil

		case <-tick:
			t := now()
			if tracker.ObserveEpoch(deps.Link.Epoch(), t) {
				log.Printf("activity: new connection, idle clock reset")
			}

			idle := false
			snap, err := deps.Reader.Read()
			if err != nil {
				log.Printf("input read error: %v", err)
				metrics.ActivityReadErrors.Inc()
				idle = tracker.Idle(t)
			} else {
				metrics.ActivitySamples.Inc()
				d := tracker.Process(snap, t)
				if d.Send {
					delivered := deps.Link.Send(d.Command)
					log.Printf("command: %s (delivered=%v)", d.Command, delivered)
					metrics.ActivityTransitions.WithLabelValues(string(d.Command)).Inc()
					if deps.Publisher != nil {
						ev := mqtt.CommandEvent{Timestamp: t, Command: d.Command, Delivered: delivered}
						if err := deps.Publisher.Publish(ev); err != nil {
							log.Printf("publish error: %v", err)
						}
					}
					sleep(cfg.Settle)
				}
				idle = d.Idle
			}

			metrics.ActivityIdleSeconds.Set(tracker.IdleFor(t).Seconds())
			if deps.Tracker != nil {
				deps.Tracker.Update(tracker.LastCommand(), deps.Link.State(), deps.Link.Epoch(), tracker.CountsSnapshot(), tracker.LastActivity())
				if deps.MQTTStatus != nil {
					deps.Tracker.SetMQTTConnected(deps.MQTTStatus.IsConnected())
				}
			}

			if idle {
				return suspend(cfg, deps, now, sleep, tracker.IdleFor(t))
			}
		}
	}
}

func suspend(cfg Config, deps Deps, now func() time.Time, sleep func(time.Duration), idleFor time.Duration) error {
	log.Printf("idle for %v, suspending for %v", idleFor.Truncate(time.Millisecond), cfg.Budget)
	if err := deps.Link.Stop(); err != nil {
		log.Printf("link stop: %v", err)
	}
	publishSystem(deps.Publisher, mqtt.SystemEvent{
		Timestamp: now(),
		Event:     "SUSPEND",
		Reason:    "IDLE",
	})
	sleep(cfg.StopGrace)
	return deps.Suspender.Suspend(cfg.Budget)
}

func publishSystem(p mqtt.Publisher, ev mqtt.SystemEvent) {
	if p == nil {
		return
	}
	if err := p.PublishSystem(ev); err != nil {
		log.Printf("failed to publish %s event: %v", ev.Event, err)
		return
	}
	log.Printf("published %s event", ev.Event)
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}
