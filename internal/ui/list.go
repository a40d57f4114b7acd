package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/spotlite/internal/models"
)

var (
	_ list.Item = resultItem{}
	_ list.Item = deviceItem{}
)

// resultItem wraps [models.SearchResult] to implement [list.Item].
type resultItem struct {
	result models.SearchResult
}

func (i resultItem) FilterValue() string { return i.result.Name }
func (i resultItem) Title() string {
	return fmt.Sprintf("%s %s", i.result.Kind.Marker(), i.result.Name)
}
func (i resultItem) Description() string { return i.result.Detail }

// deviceItem wraps [models.Device] to implement [list.Item].
type deviceItem struct {
	device models.Device
}

func (i deviceItem) FilterValue() string { return i.device.Name }
func (i deviceItem) Title() string {
	if i.device.IsActive {
		return fmt.Sprintf("%s (active)", i.device.Name)
	}
	return i.device.Name
}
func (i deviceItem) Description() string {
	return fmt.Sprintf("%s • volume %d%%", i.device.Type, i.device.VolumePercent)
}
