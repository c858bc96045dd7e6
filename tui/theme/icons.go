package theme

import (
	"os"

	"github.com/grovetools/extender/config"
)

// Nerd Font Icons (Private Constants)
const (
	nerdIconProfile = "\uf007"     // fa-user (U+F007)
	nerdIconLink    = "\uf0c1"     // fa-link (U+F0C1)
	nerdIconDataset = "\U000f01bc" // md-database (U+F01BC)
	nerdIconFolder  = "\uf07b"     // fa-folder (U+F07B)
	nerdIconJob     = "\uf085"     // fa-cogs (U+F085)
	nerdIconSuccess = "\U000f012c" // md-check (U+F012C)
	nerdIconError   = "\uea87"     // cod-error (U+EA87)
	nerdIconRunning = "\uf021"     // fa-refresh (U+F021)
	nerdIconDefault = "\uf005"     // fa-star (U+F005)
	nerdIconArrow   = "\U000f0054" // md-arrow_right (U+F0054)
)

// ASCII Fallback Icons (Private Constants)
const (
	asciiIconProfile = "@"
	asciiIconLink    = "->"
	asciiIconDataset = "[D]"
	asciiIconFolder  = "[F]"
	asciiIconJob     = "[J]"
	asciiIconSuccess = "✓"
	asciiIconError   = "x"
	asciiIconRunning = "~"
	asciiIconDefault = "*"
	asciiIconArrow   = ">"
)

// Public Icon Variables
var (
	IconProfile string
	IconLink    string
	IconDataset string
	IconFolder  string
	IconJob     string
	IconSuccess string
	IconError   string
	IconRunning string
	IconDefault string
	IconArrow   string
)

func init() {
	if useASCIIIcons() {
		IconProfile = asciiIconProfile
		IconLink = asciiIconLink
		IconDataset = asciiIconDataset
		IconFolder = asciiIconFolder
		IconJob = asciiIconJob
		IconSuccess = asciiIconSuccess
		IconError = asciiIconError
		IconRunning = asciiIconRunning
		IconDefault = asciiIconDefault
		IconArrow = asciiIconArrow
		return
	}
	IconProfile = nerdIconProfile
	IconLink = nerdIconLink
	IconDataset = nerdIconDataset
	IconFolder = nerdIconFolder
	IconJob = nerdIconJob
	IconSuccess = nerdIconSuccess
	IconError = nerdIconError
	IconRunning = nerdIconRunning
	IconDefault = nerdIconDefault
	IconArrow = nerdIconArrow
}

func useASCIIIcons() bool {
	if os.Getenv("EXTENDER_ICONS") == "ascii" {
		return true
	}
	cfg, err := config.LoadDefault()
	if err != nil {
		return false
	}
	var tuiCfg struct {
		Icons string `yaml:"icons"`
	}
	if err := cfg.UnmarshalExtension("tui", &tuiCfg); err == nil && tuiCfg.Icons == "ascii" {
		return true
	}
	return false
}
