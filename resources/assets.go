// Package resources bundles the static assets shipped inside the binary.
package resources

import (
	"embed"
	"fmt"
	"path"
	"sync"

	"fyne.io/fyne/v2"
)

//go:embed icon/*.png
var iconFS embed.FS

//go:embed sounds/*.wav
var soundFS embed.FS

var cache sync.Map

// Icon returns the embedded application icon with the given file name.
func Icon(fileName string) (fyne.Resource, error) {
	return load(iconFS, "icon/"+fileName)
}

// MustIcon returns an embedded icon or panics on error.
func MustIcon(fileName string) fyne.Resource {
	resource, err := Icon(fileName)
	if err != nil {
		panic(err)
	}
	return resource
}

// Cue returns the embedded notification sound with the given file name.
func Cue(fileName string) (fyne.Resource, error) {
	return load(soundFS, "sounds/"+fileName)
}

func load(fsys embed.FS, assetPath string) (fyne.Resource, error) {
	if cached, ok := cache.Load(assetPath); ok {
		return cached.(fyne.Resource), nil
	}
	data, err := fsys.ReadFile(assetPath)
	if err != nil {
		return nil, fmt.Errorf("load embedded asset %s: %w", assetPath, err)
	}
	resource := fyne.NewStaticResource(path.Base(assetPath), data)
	cache.Store(assetPath, resource)
	return resource, nil
}
