package capture

import (
	"errors"
	"fmt"
)

// Reason classifies why a capture device could not be started.
type Reason string

const (
	ReasonPermissionDenied Reason = "permission_denied"
	ReasonDeviceNotFound   Reason = "device_not_found"
	ReasonInsecureContext  Reason = "insecure_context"
	ReasonUnknown          Reason = "unknown"
)

// DeviceError couples a start failure with operator remediation text.
type DeviceError struct {
	Reason Reason
	Err    error
}

// NewDeviceError wraps err under the given reason.
func NewDeviceError(reason Reason, err error) *DeviceError {
	return &DeviceError{Reason: reason, Err: err}
}

func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("capture device %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("capture device %s", e.Reason)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// Hint returns remediation text for the operator.
func (e *DeviceError) Hint() string {
	switch e.Reason {
	case ReasonPermissionDenied:
		return "Camera access was denied. Allow camera permissions and try again."
	case ReasonDeviceNotFound:
		return "No camera was found on this device. Use manual entry instead."
	case ReasonInsecureContext:
		return "Camera capture requires a secure (HTTPS) connection."
	default:
		return "Could not start the camera. Use manual entry instead."
	}
}

var (
	// ErrNoCode is returned by a decode step when no code is visible in
	// frame. It is the expected steady state while scanning and is never
	// surfaced to callers.
	ErrNoCode = errors.New("no code in frame")

	// ErrCameraActive rejects manual entry while a camera session runs.
	ErrCameraActive = errors.New("manual entry disabled while camera is active")
)
