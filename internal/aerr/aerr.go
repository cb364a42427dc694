// Package aerr defines the sentinel error kinds shared across Aegis Core's
// subsystems, matching the error taxonomy the guidance loop reasons about.
package aerr

import "errors"

var (
	// ErrBridgeUnavailable is returned by the Bridge reader while it is not
	// attached to a region.
	ErrBridgeUnavailable = errors.New("bridge unavailable")

	// ErrBridgeProtocol wraps a failed re-attach after frame_id regressed on
	// two consecutive reads. A bad magic number is reported as ErrBadMagic.
	ErrBridgeProtocol = errors.New("bridge protocol error")

	// ErrSensorTimeout means a source did not produce a frame/scan within
	// its timeout. The tick is skipped, not fatal.
	ErrSensorTimeout = errors.New("sensor timeout")

	// ErrDetectorLoad is fatal and only ever surfaces at startup.
	ErrDetectorLoad = errors.New("detector load failure")

	// ErrKernelLaunch wraps a Detector frame-size mismatch or inference
	// failure. The guidance loop logs it and skips the tick; it does not
	// stop the loop.
	ErrKernelLaunch = errors.New("kernel launch failure")

	// ErrTransport covers StationLink and CloudLink I/O failures. Local
	// transports resume accepting; CloudLink reconnects with backoff.
	ErrTransport = errors.New("transport error")

	// ErrOverflowDropped is logged, never propagated to a caller that
	// would treat it as fatal.
	ErrOverflowDropped = errors.New("overflow dropped")

	// ErrNoData is returned by Bridge.Read when nothing new is ready.
	ErrNoData = errors.New("no data")

	// ErrFailedOpen means the region could not be mapped at all.
	ErrFailedOpen = errors.New("failed to open bridge region")

	// ErrBadMagic means the region was mapped but the magic sentinel did
	// not match.
	ErrBadMagic = errors.New("bad magic number")
)
