package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for Skein.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Subtle gradient-like color scheme (Indigo/Violet)
	s1 := termenv.String("      _        _      ").Foreground(p.Color("#818cf8"))
	s2 := termenv.String("  ___| | _____(_)_ __  ").Foreground(p.Color("#a78bfa"))
	s3 := termenv.String(" / __| |/ / _ \\ | '_ \\ ").Foreground(p.Color("#c084fc"))
	s4 := termenv.String(" \\__ \\   <  __/ | | | |").Foreground(p.Color("#e879f9"))
	s5 := termenv.String(" |___/_|\\_\\___|_|_| |_|").Foreground(p.Color("#f472b6"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(termenv.String(fmt.Sprintf("  workflow canvas sync core %s", version)).Faint())
	fmt.Println()
}
