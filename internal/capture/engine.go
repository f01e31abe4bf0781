package capture

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/omix2003/courierlink/internal/logger"
	"github.com/omix2003/courierlink/internal/model"
)

// State enumerates capture engine states.
type State string

const (
	StateIdle      State = "IDLE"
	StateAcquiring State = "ACQUIRING"
	StateScanning  State = "SCANNING"
	StateDecoded   State = "DECODED"
	StateStopped   State = "STOPPED"
	StateFailed    State = "FAILED"
)

// Facing selects which camera on a multi-camera device.
type Facing string

const (
	FacingBack  Facing = "environment"
	FacingFront Facing = "user"
)

// BindConfig carries device binding preferences.
type BindConfig struct {
	Facing Facing
}

// Device is an acquired optical capture device. Decode blocks for one
// attempt and returns ErrNoCode while no code is in frame.
type Device interface {
	Bind(cfg BindConfig) error
	Decode(ctx context.Context, kind model.CodeKind) (string, error)
	Close() error
}

// Opener acquires capture devices. Available fails fast, before any
// acquisition, when no capture API exists in the current context.
type Opener interface {
	Available() error
	Open(ctx context.Context) (Device, error)
}

// Result is the single decode produced by one capture session.
type Result struct {
	Code string
	Kind model.CodeKind
}

// Engine drives the camera device lifecycle: acquire, wait for the capture
// surface to mount, bind, run the decode loop, release. At most one decode
// result is produced per session; a successful decode auto-stops the engine
// so the device is released before anything downstream runs. The device is
// exclusive: Start always releases the previous handle first.
type Engine struct {
	opener    Opener
	mountWait time.Duration
	logger    *logger.Logger

	mu        sync.Mutex
	state     State
	device    Device
	session   uint64
	surfaceCh chan struct{}
	stopCh    chan struct{}
}

// NewEngine creates an idle capture engine.
func NewEngine(opener Opener, mountWait time.Duration, l *logger.Logger) *Engine {
	return &Engine{
		opener:    opener,
		mountWait: mountWait,
		logger:    l,
		state:     StateIdle,
	}
}

// State returns the current engine state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// CameraActive reports whether a camera session is running.
func (e *Engine) CameraActive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == StateAcquiring || e.state == StateScanning
}

// SurfaceReady signals that the capture surface finished mounting. The
// surface renders only after the state flips to ACQUIRING, so binding waits
// for this acknowledgement (or the configured mount-wait delay).
func (e *Engine) SurfaceReady() {
	e.mu.Lock()
	ch := e.surfaceCh
	e.mu.Unlock()
	if ch != nil {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Start begins a capture session for one code kind, releasing any previous
// session first so a restart (such as a barcode to QR mode switch) never
// leaks a device handle. It fails fast when no capture API is available.
// onResult fires at most once, after the device has been released. onError
// fires on acquisition or binding failure.
func (e *Engine) Start(ctx context.Context, kind model.CodeKind, onResult func(Result), onError func(error)) error {
	if err := e.opener.Available(); err != nil {
		e.mu.Lock()
		e.releaseLocked()
		e.state = StateFailed
		e.mu.Unlock()
		return err
	}

	e.mu.Lock()
	e.releaseLocked()
	e.session++
	session := e.session
	e.state = StateAcquiring
	e.surfaceCh = make(chan struct{}, 1)
	e.stopCh = make(chan struct{})
	surfaceCh := e.surfaceCh
	stopCh := e.stopCh
	e.mu.Unlock()

	go e.run(ctx, session, kind, surfaceCh, stopCh, onResult, onError)
	return nil
}

func (e *Engine) run(ctx context.Context, session uint64, kind model.CodeKind, surfaceCh, stopCh chan struct{}, onResult func(Result), onError func(error)) {
	dev, err := e.opener.Open(ctx)
	if err != nil {
		e.fail(session, err, onError)
		return
	}

	// The surface mounts asynchronously after the state flips; wait for its
	// acknowledgement, bounded by the mount-wait delay.
	select {
	case <-surfaceCh:
	case <-time.After(e.mountWait):
	case <-stopCh:
		_ = dev.Close()
		return
	case <-ctx.Done():
		_ = dev.Close()
		return
	}

	e.mu.Lock()
	if session != e.session || e.state != StateAcquiring {
		// stop raced the acquisition: release the handle, never bind
		e.mu.Unlock()
		_ = dev.Close()
		return
	}
	e.device = dev
	e.mu.Unlock()

	if err := dev.Bind(BindConfig{Facing: FacingBack}); err != nil {
		e.fail(session, err, onError)
		return
	}

	e.mu.Lock()
	if session != e.session {
		e.mu.Unlock()
		return
	}
	e.state = StateScanning
	e.mu.Unlock()
	e.logger.Debug("capture scanning", "kind", string(kind))

	for {
		code, err := dev.Decode(ctx, kind)
		if err != nil {
			if errors.Is(err, ErrNoCode) {
				// expected steady state, keep scanning
				continue
			}
			select {
			case <-stopCh:
				return
			default:
			}
			if ctx.Err() != nil {
				return
			}
			e.fail(session, err, onError)
			return
		}

		e.mu.Lock()
		if session != e.session {
			e.mu.Unlock()
			return
		}
		e.state = StateDecoded
		e.mu.Unlock()

		// release the camera before the result reaches anything downstream
		e.Stop()
		e.logger.Debug("capture decoded", "kind", string(kind))
		if onResult != nil {
			onResult(Result{Code: code, Kind: kind})
		}
		return
	}
}

func (e *Engine) fail(session uint64, err error, onError func(error)) {
	e.mu.Lock()
	if session != e.session {
		e.mu.Unlock()
		return
	}
	e.releaseLocked()
	e.state = StateFailed
	e.mu.Unlock()

	e.logger.Warn("capture session failed", "error", err)
	if onError != nil {
		onError(err)
	}
}

// Stop ends the session and releases the device handle. Safe to call any
// number of times, in any state.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.releaseLocked()
	switch e.state {
	case StateAcquiring, StateScanning, StateDecoded:
		e.state = StateStopped
	}
}

// releaseLocked closes the stop channel and device handle. Callers hold
// e.mu.
func (e *Engine) releaseLocked() {
	if e.stopCh != nil {
		close(e.stopCh)
		e.stopCh = nil
	}
	e.surfaceCh = nil
	if e.device != nil {
		_ = e.device.Close()
		e.device = nil
	}
	e.session++
}

// SubmitManual feeds an operator-typed code through the same result path as
// a camera decode. Rejected while a camera session is active.
func (e *Engine) SubmitManual(code string, kind model.CodeKind, onResult func(Result)) error {
	if e.CameraActive() {
		return ErrCameraActive
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return model.ErrEmptyCode
	}
	if onResult != nil {
		onResult(Result{Code: code, Kind: kind})
	}
	return nil
}
