package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// PathResolver finds data directories relative to the running binary.
type PathResolver struct {
	executableDir string
	configDir     string
	// file whose presence marks a usable data directory
	marker string
}

// NewPathResolver creates a resolver for app. A data directory is valid when
// it contains marker.
func NewPathResolver(app, marker string) (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	// Resolve any symlinks to get the actual binary location
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executableDir: filepath.Dir(execPath),
		configDir:     userConfigDir(homeDir, app),
		marker:        marker,
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", pr.executableDir, pr.configDir)
	return pr, nil
}

// userConfigDir returns the appropriate config directory for the platform
func userConfigDir(homeDir, app string) string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, ".config", app)
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, app)
		}
		return filepath.Join(homeDir, ".config", app)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, app)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", app)
	default:
		return filepath.Join(homeDir, "."+app)
	}
}

// GetDataDir resolves the data directory containing the index artifacts.
// It tries multiple locations in order of preference:
// 1. User-specified path (if absolute)
// 2. Relative to current working directory
// 3. Relative to executable directory
// 4. data/ next to the executable, its parent, or the config dir
// When none is valid the user-specified path is returned unchanged so the
// load error names it.
func (pr *PathResolver) GetDataDir(userSpecifiedPath string) string {
	for _, path := range pr.candidates(userSpecifiedPath) {
		if pr.isValidDataDir(path) {
			log.Debugf("Found valid data directory: %s", path)
			return path
		}
		log.Debugf("Data directory candidate not valid: %s", path)
	}
	return userSpecifiedPath
}

func (pr *PathResolver) candidates(userSpecifiedPath string) []string {
	if filepath.IsAbs(userSpecifiedPath) {
		return []string{userSpecifiedPath}
	}
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, userSpecifiedPath))
	}
	return append(paths,
		filepath.Join(pr.executableDir, userSpecifiedPath),
		filepath.Join(pr.executableDir, "data"),
		filepath.Join(filepath.Dir(pr.executableDir), "data"),
		filepath.Join(pr.configDir, "data"),
	)
}

// isValidDataDir checks if a directory contains the marker file
func (pr *PathResolver) isValidDataDir(path string) bool {
	stat, err := os.Stat(filepath.Join(path, pr.marker))
	return err == nil && stat.Mode().IsRegular()
}

// ConfigDir returns the platform config directory.
func (pr *PathResolver) ConfigDir() string {
	return pr.configDir
}

// DiagnosePathIssues reports every data directory candidate and whether it
// holds the marker file.
func (pr *PathResolver) DiagnosePathIssues(userDataPath string) map[string]any {
	cwd, _ := os.Getwd()
	candidates := pr.candidates(userDataPath)
	tested := make([]map[string]any, 0, len(candidates))
	for _, candidate := range candidates {
		tested = append(tested, map[string]any{
			"path":     candidate,
			"exists":   FileExists(candidate),
			"is_valid": pr.isValidDataDir(candidate),
		})
	}
	return map[string]any{
		"executable_dir":      pr.executableDir,
		"config_dir":          pr.configDir,
		"current_dir":         cwd,
		"os":                  runtime.GOOS,
		"resolved_data_dir":   pr.GetDataDir(userDataPath),
		"data_dir_candidates": tested,
	}
}
