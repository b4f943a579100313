//go:build darwin

package platform

import (
	"os/exec"
)

type darwinImpl struct{}

func newPlatform() Platform {
	return &darwinImpl{}
}

func (p *darwinImpl) GetSystemInfo() *SystemInfo {
	return systemInfo()
}

func (p *darwinImpl) OpenBrowser(url string) error {
	return exec.Command("open", url).Start()
}
