// Package viz renders analysis results in the terminal.
//
//   - [Canvas]: Braille pixel canvas; [Planform] draws a wing mesh on it
//   - [Explorer]: Bubble Tea model that re-evaluates a case as the flight
//     condition changes
//
// # Key Bindings
//
//	Left/Right - Velocity down/up
//	Up/Down    - Altitude up/down
//	+/-        - Step size
//	C          - Toggle Reynolds chain
//	R          - Reset to the case values
//	Q          - Quit
package viz
