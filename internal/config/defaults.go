package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// PlatformConfigDir returns the platform-specific config directory.
//
// Platform paths:
//   - Windows: %APPDATA%\winquiet\
//   - others:  $XDG_CONFIG_HOME/winquiet/ or ~/.config/winquiet/
func PlatformConfigDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "winquiet")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "AppData", "Roaming", "winquiet")
	}
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "winquiet")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "winquiet")
}

// PlatformLogDir returns the platform-specific log directory.
//
// Platform paths:
//   - Windows: %LOCALAPPDATA%\winquiet\logs\
//   - others:  $XDG_STATE_HOME/winquiet/ or ~/.local/state/winquiet/
func PlatformLogDir() string {
	if runtime.GOOS == "windows" {
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "winquiet", "logs")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "AppData", "Local", "winquiet", "logs")
	}
	if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
		return filepath.Join(xdgState, "winquiet")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "winquiet")
}
