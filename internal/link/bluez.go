package link

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
	"tinygo.org/x/bluetooth"
)

const (
	bluezService      = "org.bluez"
	bluezAdapter      = "org.bluez.Adapter1"
	bluezDevice       = "org.bluez.Device1"
	propertiesIface   = "org.freedesktop.DBus.Properties"
	propertiesChanged = propertiesIface + ".PropertiesChanged"
)

// BlueZRadio drives the host Bluetooth controller. The GATT service and the
// advertisement go through tinygo.org/x/bluetooth. That package does not
// report connections on Linux, so they are read from the Connected property
// of BlueZ device objects on the system bus.
type BlueZRadio struct {
	adapter     *bluetooth.Adapter
	adapterPath dbus.ObjectPath
	adv         *bluetooth.Advertisement
	tx          bluetooth.Characteristic

	bus     *dbus.Conn
	signals chan *dbus.Signal
	done    chan struct{}

	mu          sync.Mutex
	handler     func(h Handle, connected bool)
	devices     map[Handle]dbus.ObjectPath
	advertising bool
}

// NewBlueZRadio uses the default adapter, hci0.
func NewBlueZRadio() *BlueZRadio {
	return &BlueZRadio{
		adapter:     bluetooth.DefaultAdapter,
		adapterPath: "/org/bluez/hci0",
		devices:     make(map[Handle]dbus.ObjectPath),
	}
}

func (r *BlueZRadio) SetConnectHandler(fn func(h Handle, connected bool)) {
	r.mu.Lock()
	r.handler = fn
	r.mu.Unlock()
}

// Enable powers the adapter on and starts watching device connections.
func (r *BlueZRadio) Enable() error {
	if err := r.adapter.Enable(); err != nil {
		return err
	}

	bus, err := dbus.SystemBus()
	if err != nil {
		return fmt.Errorf("system bus: %w", err)
	}
	r.mu.Lock()
	r.bus = bus
	r.mu.Unlock()

	if err := setPowered(bus, r.adapterPath, true); err != nil {
		return fmt.Errorf("power on adapter: %w", err)
	}

	if err := bus.AddMatchSignal(r.matchOptions()...); err != nil {
		return fmt.Errorf("watch devices: %w", err)
	}
	r.signals = make(chan *dbus.Signal, 32)
	r.done = make(chan struct{})
	bus.Signal(r.signals)
	go r.watch(r.signals, r.done)
	return nil
}

func (r *BlueZRadio) Register(svc Service) error {
	svcUUID, err := bluetooth.ParseUUID(svc.UUID)
	if err != nil {
		return fmt.Errorf("service uuid: %w", err)
	}
	charUUID, err := bluetooth.ParseUUID(svc.CharUUID)
	if err != nil {
		return fmt.Errorf("characteristic uuid: %w", err)
	}
	return r.adapter.AddService(&bluetooth.Service{
		UUID: svcUUID,
		Characteristics: []bluetooth.CharacteristicConfig{{
			Handle: &r.tx,
			UUID:   charUUID,
			Value:  svc.Initial,
			Flags:  bluetooth.CharacteristicReadPermission | bluetooth.CharacteristicNotifyPermission,
		}},
	})
}

// StartAdvertising configures the advertisement on first use. BlueZ builds
// the AD structure itself from the name, so adv.Data is not used here.
func (r *BlueZRadio) StartAdvertising(adv Advertisement) error {
	if r.adv == nil {
		a := r.adapter.DefaultAdvertisement()
		err := a.Configure(bluetooth.AdvertisementOptions{
			LocalName: adv.Name,
			Interval:  bluetooth.NewDuration(adv.Interval),
		})
		if err != nil {
			return fmt.Errorf("configure advertisement: %w", err)
		}
		r.adv = a
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.advertising {
		return nil
	}
	if err := r.adv.Start(); err != nil {
		return err
	}
	r.advertising = true
	return nil
}

// StopAdvertising is a no-op when nothing is being advertised; BlueZ
// rejects unregistering an advertisement twice.
func (r *BlueZRadio) StopAdvertising() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.adv == nil || !r.advertising {
		return nil
	}
	if err := r.adv.Stop(); err != nil {
		return err
	}
	r.advertising = false
	return nil
}

// Notify updates the characteristic value, which BlueZ pushes to the
// subscribed client. The handle must belong to a live connection.
func (r *BlueZRadio) Notify(h Handle, payload []byte) error {
	r.mu.Lock()
	_, ok := r.devices[h]
	r.mu.Unlock()
	if !ok {
		return ErrUnknownHandle
	}
	_, err := r.tx.Write(payload)
	return err
}

func (r *BlueZRadio) Disconnect(h Handle) error {
	r.mu.Lock()
	path, ok := r.devices[h]
	bus := r.bus
	r.mu.Unlock()
	if !ok || bus == nil {
		return ErrUnknownHandle
	}
	return bus.Object(bluezService, path).Call(bluezDevice+".Disconnect", 0).Err
}

// Disable withdraws the advertisement, stops watching connections and
// powers the adapter off. The GATT service goes away with the process.
func (r *BlueZRadio) Disable() error {
	var errs []error
	if err := r.StopAdvertising(); err != nil {
		errs = append(errs, fmt.Errorf("stop advertising: %w", err))
	}

	r.mu.Lock()
	bus := r.bus
	r.bus = nil
	r.mu.Unlock()
	if bus == nil {
		return errors.Join(errs...)
	}

	if r.signals != nil {
		bus.RemoveSignal(r.signals)
		if err := bus.RemoveMatchSignal(r.matchOptions()...); err != nil {
			errs = append(errs, fmt.Errorf("unwatch devices: %w", err))
		}
		close(r.done)
		r.signals, r.done = nil, nil
	}
	if err := setPowered(bus, r.adapterPath, false); err != nil {
		errs = append(errs, fmt.Errorf("power off adapter: %w", err))
	}
	return errors.Join(errs...)
}

func setPowered(bus *dbus.Conn, adapter dbus.ObjectPath, on bool) error {
	return bus.Object(bluezService, adapter).
		Call(propertiesIface+".Set", 0, bluezAdapter, "Powered", dbus.MakeVariant(on)).Err
}

func (r *BlueZRadio) matchOptions() []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchInterface(propertiesIface),
		dbus.WithMatchMember("PropertiesChanged"),
		dbus.WithMatchArg(0, bluezDevice),
		dbus.WithMatchOption("path_namespace", string(r.adapterPath)),
	}
}

func (r *BlueZRadio) watch(signals <-chan *dbus.Signal, done <-chan struct{}) {
	for {
		select {
		case sig, ok := <-signals:
			if !ok {
				return
			}
			r.handleSignal(sig)
		case <-done:
			return
		}
	}
}

// handleSignal records the device and reports the change to the handler.
// The handler may call Disconnect, so it runs without the lock held.
func (r *BlueZRadio) handleSignal(sig *dbus.Signal) {
	addr, connected, ok := connectionChange(sig, r.adapterPath)
	if !ok {
		return
	}
	h := Handle(addr)

	r.mu.Lock()
	if connected {
		r.devices[h] = sig.Path
	} else {
		delete(r.devices, h)
	}
	fn := r.handler
	r.mu.Unlock()

	if fn != nil {
		fn(h, connected)
	}
}

// connectionChange extracts a Connected change of a device on the adapter
// from a PropertiesChanged signal. Device paths look like
// /org/bluez/hci0/dev_AA_BB_CC_DD_EE_FF.
func connectionChange(sig *dbus.Signal, adapterPath dbus.ObjectPath) (addr string, connected bool, ok bool) {
	if sig == nil || sig.Name != propertiesChanged || len(sig.Body) < 2 {
		return "", false, false
	}
	if iface, _ := sig.Body[0].(string); iface != bluezDevice {
		return "", false, false
	}
	changed, _ := sig.Body[1].(map[string]dbus.Variant)
	v, found := changed["Connected"]
	if !found {
		return "", false, false
	}
	connected, isBool := v.Value().(bool)
	if !isBool {
		return "", false, false
	}

	prefix := string(adapterPath) + "/dev_"
	rest, hasPrefix := strings.CutPrefix(string(sig.Path), prefix)
	if !hasPrefix || rest == "" || strings.Contains(rest, "/") {
		return "", false, false
	}
	return strings.ReplaceAll(rest, "_", ":"), connected, true
}
