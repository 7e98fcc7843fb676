// Package paths resolves the plugins directory and the trusted game binaries.
package paths

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/silvermoth/bg3loader/internal/domain"
)

const (
	// Plugin dlls, config.toml and logs live under the game's local app data.
	pluginsSubdir = `Larian Studios\Baldur's Gate 3\Plugins`
	logsSubdir    = "logs"

	// Recognized binary variants: Vulkan build and the DX11 build.
	exeVulkan = "bg3.exe"
	exeDX11   = "bg3_dx11.exe"
)

// PluginsDir resolves (and creates, if missing) the plugins directory.
// Returns firstTime=true when the directory was just created so the caller
// can walk the user through finishing setup.
func PluginsDir() (dir string, firstTime bool, err error) {
	localAppData := os.Getenv("LOCALAPPDATA")
	if localAppData == "" {
		return "", false, &domain.EnvironmentError{
			Op:  "resolve plugins dir",
			Err: errors.New("LOCALAPPDATA is not set"),
		}
	}
	return PluginsDirUnder(localAppData)
}

// PluginsDirUnder is PluginsDir rooted at an explicit local app data path.
func PluginsDirUnder(localAppData string) (string, bool, error) {
	dir := filepath.Join(localAppData, pluginsSubdir)

	if _, err := os.Stat(dir); err == nil {
		return dir, false, nil
	} else if !os.IsNotExist(err) {
		return "", false, &domain.EnvironmentError{Op: "stat plugins dir", Err: err}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, &domain.EnvironmentError{Op: "create plugins dir", Err: err}
	}
	return dir, true, nil
}

// LogsDir resolves (and creates) the log directory inside the plugins dir.
func LogsDir(pluginsDir string) (string, error) {
	dir := filepath.Join(pluginsDir, logsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &domain.EnvironmentError{Op: "create logs dir", Err: err}
	}
	return dir, nil
}

// GameBinaries builds the TargetPathSet for both renderer variants under the
// configured install root.
func GameBinaries(installRoot string) (domain.TargetPathSet, error) {
	return domain.NewTargetPathSet(
		filepath.Join(installRoot, "bin", exeVulkan),
		filepath.Join(installRoot, "bin", exeDX11),
	)
}
