// vmouse turns webcam hand gestures into mouse, scroll and volume control.
//
// Usage:
//
//	vmouse                       # Run with the tray and settings UI
//	vmouse run --no-tray         # Run headless
//	vmouse config                # Print the effective configuration
//	vmouse events --limit 20     # Show recent gestures
//	vmouse events stats          # Count gestures by kind
//
// Configuration is read from ~/.vmouse/config.yaml.
package main

import (
	"os"

	"github.com/ayusman/vmouse/cmd/vmouse/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
