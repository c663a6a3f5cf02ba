package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dmgcore/dmgcore/internal/debug"
	"github.com/dmgcore/dmgcore/internal/emulator"
	"github.com/dmgcore/dmgcore/internal/ui"
)

func main() {
	romPath := flag.String("rom", "", "Path to ROM file")
	bootROMPath := flag.String("boot", "", "Path to a 256-byte DMG boot ROM (optional)")
	scale := flag.Int("scale", 3, "Display scale (1-6)")
	enableLogging := flag.Bool("log", false, "Enable logging (disabled by default)")
	flag.Parse()

	if *romPath == "" {
		fmt.Println("Usage: dmgcore -rom <path-to-rom>")
		fmt.Println("  -rom <path>      Path to ROM file")
		fmt.Println("  -boot <path>     Path to a 256-byte DMG boot ROM (optional)")
		fmt.Println("  -scale <1-6>     Display scale (default: 3)")
		fmt.Println("  -log             Enable logging (disabled by default)")
		os.Exit(1)
	}

	if *scale < 1 || *scale > 6 {
		fmt.Fprintf(os.Stderr, "Error: scale must be between 1 and 6\n")
		os.Exit(1)
	}

	romData, err := os.ReadFile(*romPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading ROM file: %v\n", err)
		os.Exit(1)
	}

	var m *emulator.Machine
	if *enableLogging {
		logger := debug.NewLogger(10000)
		logger.SetComponentEnabled(debug.ComponentCPU, true)
		logger.SetComponentEnabled(debug.ComponentPPU, true)
		logger.SetComponentEnabled(debug.ComponentAPU, true)
		logger.SetComponentEnabled(debug.ComponentMemory, true)
		logger.SetComponentEnabled(debug.ComponentMBC, true)
		logger.SetComponentEnabled(debug.ComponentTimer, true)
		logger.SetComponentEnabled(debug.ComponentInput, true)
		logger.SetComponentEnabled(debug.ComponentUI, true)
		logger.SetComponentEnabled(debug.ComponentSystem, true)
		m = emulator.NewMachineWithLogger(logger)
	} else {
		m = emulator.NewMachine()
	}

	if *bootROMPath != "" {
		bootData, err := os.ReadFile(*bootROMPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading boot ROM file: %v\n", err)
			os.Exit(1)
		}
		if err := m.LoadBootROM(bootData); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading boot ROM: %v\n", err)
			os.Exit(1)
		}
	}

	if err := m.LoadCartridge(romData); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ROM: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("dmgcore")
	fmt.Println("=======")
	fmt.Printf("ROM loaded: %s\n", *romPath)
	fmt.Printf("Display scale: %dx\n", *scale)
	fmt.Println("\nControls:")
	fmt.Println("  Arrow Keys / WASD - D-pad")
	fmt.Println("  Z - A button")
	fmt.Println("  X - B button")
	fmt.Println("  Backspace - Select")
	fmt.Println("  Enter - Start")

	uiInstance, err := ui.NewFyneUI(m, *scale)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating UI: %v\n", err)
		os.Exit(1)
	}

	if err := uiInstance.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "UI error: %v\n", err)
		os.Exit(1)
	}
}
