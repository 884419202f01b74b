package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/olivier-w/wavescope/internal/track"
	"github.com/olivier-w/wavescope/internal/ui"
)

// buildViewerModel validates path, starts its background decode, and returns
// the viewer wired to the load channel.
func buildViewerModel(path string) (ui.Model, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ui.Model{}, err
	}
	if info.IsDir() {
		return ui.Model{}, fmt.Errorf("%s is a directory", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !track.IsSupportedExt(ext) {
		return ui.Model{}, fmt.Errorf("unsupported format %s (supported: %s)", ext, track.SupportedExtsList())
	}

	tr, load, err := track.Open(path)
	if err != nil {
		return ui.Model{}, err
	}
	return ui.New(tr, load), nil
}
