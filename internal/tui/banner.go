package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the startup banner with the running version.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	lines := []string{
		`                 _                              _`,
		` _ __ ___   ___ | |_ ___  _ __ _ __   ___   ___ | |`,
		`| '_ ` + "`" + ` _ \ / _ \| __/ _ \| '__| '_ \ / _ \ / _ \| |`,
		`| | | | | | (_) | || (_) | |  | |_) | (_) | (_) | |`,
		`|_| |_| |_|\___/ \__\___/|_|  | .__/ \___/ \___/|_|`,
		`                              |_|`,
	}
	colors := []string{"#34d399", "#2dd4bf", "#22d3ee", "#38bdf8", "#60a5fa", "#818cf8"}

	fmt.Println()
	for i, line := range lines {
		fmt.Println(termenv.String(line).Foreground(p.Color(colors[i])))
	}
	fmt.Printf("  fleet checkout bot %s\n\n", version)
}
