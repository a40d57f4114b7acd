// Package ui implements interactive terminal pickers using bubbletea's
// Elm architecture.
//
// Two pickers are provided for terminal invocations:
//  1. [PickResult] : choose one search result to play
//  2. [PickDevice] : choose a playback device
//
// The [Model] implements bubbletea's standard Init/Update/View pattern.
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
