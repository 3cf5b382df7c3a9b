// Package link owns the BLE peripheral role: advertising, the single client
// connection and the notification channel.
package link

import (
	"errors"
	"time"
)

// Handle identifies a client connection. It is opaque and supplied by the
// radio stack.
type Handle string

// Nordic UART service layout, which most BLE serial receivers already know.
const (
	ServiceUUID = "6E400001-B5A3-F393-E0A9-E50E24DCCA9E"
	TxCharUUID  = "6E400003-B5A3-F393-E0A9-E50E24DCCA9E"
)

// MaxNameLen is the longest advertised device name.
const MaxNameLen = 20

// Advertisement describes what the radio broadcasts.
type Advertisement struct {
	Name     string
	Interval time.Duration
	// Data is the raw AD structure for stacks that take one.
	Data []byte
}

// Service describes the single GATT service: one read + notify
// characteristic carrying the command payload.
type Service struct {
	UUID     string
	CharUUID string
	Initial  []byte
}

// Radio is the wireless stack seen by the Controller.
type Radio interface {
	// SetConnectHandler registers the callback for connect and disconnect
	// events. The callback may run on another goroutine.
	SetConnectHandler(fn func(h Handle, connected bool))
	Enable() error
	Register(svc Service) error
	StartAdvertising(adv Advertisement) error
	StopAdvertising() error
	// Notify pushes payload to the client identified by h.
	Notify(h Handle, payload []byte) error
	Disconnect(h Handle) error
	Disable() error
}

var (
	ErrAlreadyStarted = errors.New("link: already started")
	ErrNameTooLong    = errors.New("link: device name too long")
	ErrUnknownHandle  = errors.New("link: unknown connection handle")
)

// AD types and flags used in the advertising payload.
const (
	adTypeFlags        = 0x01
	adTypeCompleteName = 0x09

	flagGeneralDiscoverable = 0x02
	flagBREDRNotSupported   = 0x04
)

// AdvertisingData builds the advertising payload: a flags field
// (LE general discoverable, BLE only) followed by the complete local name.
func AdvertisingData(name string) ([]byte, error) {
	if len(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	data := []byte{2, adTypeFlags, flagGeneralDiscoverable | flagBREDRNotSupported}
	data = append(data, byte(len(name)+1), adTypeCompleteName)
	return append(data, name...), nil
}
