package platform

import (
	"runtime"
)

// NewPlatform creates the implementation for the current OS.
func NewPlatform() (Platform, error) {
	p := newPlatform()
	if p == nil {
		return nil, &UnsupportedPlatformError{OS: runtime.GOOS}
	}
	return p, nil
}

// UnsupportedPlatformError represents an error for unsupported platforms
type UnsupportedPlatformError struct {
	OS string
}

func (e *UnsupportedPlatformError) Error() string {
	return "unsupported platform: " + e.OS
}
