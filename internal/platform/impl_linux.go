//go:build linux

package platform

import (
	"fmt"
	"os/exec"
)

type linuxImpl struct{}

func newPlatform() Platform {
	return &linuxImpl{}
}

func (p *linuxImpl) GetSystemInfo() *SystemInfo {
	return systemInfo()
}

func (p *linuxImpl) OpenBrowser(url string) error {
	// Try common Linux browser commands
	browsers := []string{"xdg-open", "x-www-browser", "firefox", "google-chrome", "chromium"}
	for _, browser := range browsers {
		path, err := exec.LookPath(browser)
		if err != nil {
			continue
		}
		if err := exec.Command(path, url).Start(); err == nil {
			return nil
		}
	}
	return fmt.Errorf("no browser found")
}
