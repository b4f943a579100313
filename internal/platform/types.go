package platform

import (
	"os"
	"runtime"
)

// Platform defines the OS-specific operations the command line client needs.
type Platform interface {
	// OpenBrowser opens the default browser with the given URL
	OpenBrowser(url string) error

	// GetSystemInfo returns system information
	GetSystemInfo() *SystemInfo
}

// SystemInfo contains system information
type SystemInfo struct {
	OS       string
	Arch     string
	Hostname string
}

func systemInfo() *SystemInfo {
	hostname, _ := os.Hostname()
	return &SystemInfo{
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		Hostname: hostname,
	}
}
