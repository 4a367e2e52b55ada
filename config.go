package main

import (
	"os"
	"path/filepath"
	"runtime"
)

// defaultStoragePath returns the ApplicationStorage.json location the NVIDIA
// app uses for the active user account. On Windows that is
// %LOCALAPPDATA%\NVIDIA Corporation\NVIDIA app\NvBackend; elsewhere the same
// layout is derived from the home directory, which mostly matters for
// pointing the tool at a copied file.
func defaultStoragePath() string {
	base := ""
	if runtime.GOOS == "windows" {
		base = os.Getenv("LOCALAPPDATA")
	}
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "ApplicationStorage.json"
		}
		base = filepath.Join(home, "AppData", "Local")
	}
	return filepath.Join(base, "NVIDIA Corporation", "NVIDIA app", "NvBackend", "ApplicationStorage.json")
}
