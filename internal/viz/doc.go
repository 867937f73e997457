// Package viz provides a terminal view for comparing tuning rules on an
// identified process model.
//
// The program is built on Bubble Tea. Each rule's closed-loop response is
// drawn as an ASCII chart next to its gains and transient metrics.
//
// # Key Bindings
//
//	←/→ h/l - Previous/next rule
//	Tab     - Toggle output and controller output
//	+/-     - Scale Kp of the selected rule by 10%
//	R       - Reset the gain scale
//	Q       - Quit
package viz
