package link

import "sync"

// Notification is one payload pushed through a FakeRadio.
type Notification struct {
	Handle  Handle
	Payload []byte
}

// FakeRadio records radio calls for test assertions. It is safe for use from
// a test goroutine and a controller goroutine at once.
type FakeRadio struct {
	mu sync.Mutex

	handler func(h Handle, connected bool)

	Enabled      bool
	Disabled     bool
	Services     []Service
	Advertising  bool
	Adverts      []Advertisement
	Notified     []Notification
	Disconnected []Handle

	// Errors returned by the corresponding calls, if set.
	EnableError    error
	RegisterError  error
	AdvertiseError error
	NotifyError    error
}

// NewFakeRadio creates a FakeRadio.
func NewFakeRadio() *FakeRadio {
	return &FakeRadio{}
}

func (f *FakeRadio) SetConnectHandler(fn func(h Handle, connected bool)) {
	f.mu.Lock()
	f.handler = fn
	f.mu.Unlock()
}

func (f *FakeRadio) Enable() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.EnableError != nil {
		return f.EnableError
	}
	f.Enabled = true
	return nil
}

func (f *FakeRadio) Register(svc Service) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RegisterError != nil {
		return f.RegisterError
	}
	f.Services = append(f.Services, svc)
	return nil
}

func (f *FakeRadio) StartAdvertising(adv Advertisement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AdvertiseError != nil {
		return f.AdvertiseError
	}
	f.Advertising = true
	f.Adverts = append(f.Adverts, adv)
	return nil
}

func (f *FakeRadio) StopAdvertising() error {
	f.mu.Lock()
	f.Advertising = false
	f.mu.Unlock()
	return nil
}

func (f *FakeRadio) Notify(h Handle, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.NotifyError != nil {
		return f.NotifyError
	}
	p := make([]byte, len(payload))
	copy(p, payload)
	f.Notified = append(f.Notified, Notification{Handle: h, Payload: p})
	return nil
}

// Disconnect records the handle and reports the disconnect through the
// connect handler, as a real stack would.
func (f *FakeRadio) Disconnect(h Handle) error {
	f.mu.Lock()
	f.Disconnected = append(f.Disconnected, h)
	fn := f.handler
	f.mu.Unlock()
	if fn != nil {
		fn(h, false)
	}
	return nil
}

func (f *FakeRadio) Disable() error {
	f.mu.Lock()
	f.Disabled = true
	f.Enabled = false
	f.Advertising = false
	f.mu.Unlock()
	return nil
}

// Connect simulates a client connecting.
func (f *FakeRadio) Connect(h Handle) {
	f.mu.Lock()
	fn := f.handler
	f.mu.Unlock()
	if fn != nil {
		fn(h, true)
	}
}

// Drop simulates a client disconnecting on its own.
func (f *FakeRadio) Drop(h Handle) {
	f.mu.Lock()
	fn := f.handler
	f.mu.Unlock()
	if fn != nil {
		fn(h, false)
	}
}

// Payloads returns the notified payloads as strings.
func (f *FakeRadio) Payloads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Notified))
	for i, n := range f.Notified {
		out[i] = string(n.Payload)
	}
	return out
}

// IsAdvertising reports whether advertising is currently on.
func (f *FakeRadio) IsAdvertising() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Advertising
}

// SetNotifyError changes the notify error under the lock.
func (f *FakeRadio) SetNotifyError(err error) {
	f.mu.Lock()
	f.NotifyError = err
	f.mu.Unlock()
}
