// Package viz draws worlds in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view that feeds wall-clock time to a fixed-step clock
//   - [Canvas]: Braille-based pixel canvas, bodies are drawn as outlines
//   - Theme cycling over 4 built-in palettes
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	S     - Single tick while paused
//	R     - Reset to initial state
//	+/-   - Simulation speed
//	Z/X   - Zoom
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	[]    - Time travel (rewind/forward)
//
// # Recording
//
// Recordings are saved to <scene>.gif in the current directory.
package viz
