//go:build windows

package platform

import (
	"fmt"

	"golang.org/x/sys/windows"
)

type windowsImpl struct{}

func newPlatform() Platform {
	return &windowsImpl{}
}

func (p *windowsImpl) GetSystemInfo() *SystemInfo {
	return systemInfo()
}

// OpenBrowser hands the URL to the shell. cmd /c start would split the query
// string at every '&'.
func (p *windowsImpl) OpenBrowser(url string) error {
	verb, err := windows.UTF16PtrFromString("open")
	if err != nil {
		return err
	}
	target, err := windows.UTF16PtrFromString(url)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	return windows.ShellExecute(0, verb, target, nil, nil, windows.SW_SHOWNORMAL)
}
