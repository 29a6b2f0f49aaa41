package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/larsks/gpiobuttond/internal/controller"
	"github.com/larsks/gpiobuttond/internal/gesture"
	"github.com/larsks/gpiobuttond/internal/gpio"
	"github.com/larsks/gpiobuttond/internal/hwdriver"
	"github.com/larsks/gpiobuttond/internal/hwdriver/gpiocdev"
)

func main() {
	var (
		chip       = flag.String("chip", "gpiochip0", "GPIO chip device to open")
		pins       = flag.String("pins", "", "Comma-separated list of pin specs (format: name:pin[:active-high|active-low][:pull-none|pull-up|pull-down|pull-auto])")
		debounceMs = flag.Int("debounce", 50, "Debounce delay in milliseconds")
		showHelp   = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *showHelp {
		fmt.Println("GPIO Button Gesture Test Program")
		fmt.Println("=================================")
		fmt.Println()
		fmt.Println("Monitors one or more GPIO pins and prints every recognized gesture")
		fmt.Println("(press, release, long_press, click, double_click) as it occurs.")
		fmt.Println()
		fmt.Println("Usage:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Pin Specification Format:")
		fmt.Println("  name:pin[:active-high|active-low][:pull-none|pull-up|pull-down|pull-auto]")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  gpiobutton-test -pins=power:17")
		fmt.Println("  gpiobutton-test -pins=power:17:pull-up,volume:27:active-low")
		fmt.Println()
		fmt.Println("Press Ctrl+C to stop monitoring.")
		return
	}

	if *pins == "" {
		log.Fatal("Error: -pins parameter is required. Use -help for usage information.")
	}

	driver, err := gpiocdev.New(*chip)
	if err != nil {
		log.Fatalf("Failed to open chip %s: %v", *chip, err)
	}

	// ctrl.Stop closes driver once StopOnSignals fires below; no
	// separate defer here to avoid closing it twice.
	ctrl := controller.New(driver)

	for _, spec := range strings.Split(*pins, ",") {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		if err := addButton(ctrl, spec, *debounceMs); err != nil {
			log.Fatalf("Failed to add button %q: %v", spec, err)
		}
	}

	ctrl.StopOnSignals(syscall.SIGINT, syscall.SIGTERM)

	if err := ctrl.StartInThread(); err != nil {
		log.Fatalf("Failed to start controller: %v", err)
	}

	fmt.Println("Monitoring, press Ctrl+C to stop...")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	fmt.Println("\nGoodbye!")
}

func addButton(ctrl *controller.Controller, rawSpec string, debounceMs int) error {
	name, pinSpecStr, found := strings.Cut(rawSpec, ":")
	if !found {
		return fmt.Errorf("expected name:pin[:active-high|active-low][:pull-...], got %q", rawSpec)
	}

	pinSpec, err := gpio.ParsePin(pinSpecStr)
	if err != nil {
		return err
	}

	polarity := gesture.PressedWhenHigh
	if pinSpec.Polarity == gpio.ActiveLow {
		polarity = gesture.PressedWhenLow
	}

	pull := hwdriver.PullNone
	switch pinSpec.PullMode {
	case gpio.PullUp:
		pull = hwdriver.PullUp
	case gpio.PullDown:
		pull = hwdriver.PullDown
	case gpio.PullAuto:
		// An active-low button idles high, so it needs a pull-up to
		// read a stable level while released, and vice versa.
		if polarity == gesture.PressedWhenLow {
			pull = hwdriver.PullUp
		} else {
			pull = hwdriver.PullDown
		}
	}

	button, err := ctrl.MakeButton(pinSpec.LineNum, polarity, pull, name, debounceMs)
	if err != nil {
		return err
	}

	button.AddOnPress(func(b *controller.Button) { logGesture(b, "press") })
	button.AddOnRelease(func(b *controller.Button) { logGesture(b, "release") })
	button.AddOnLongPress(func(b *controller.Button) { logGesture(b, "long_press") })
	button.AddOnClick(func(b *controller.Button) { logGesture(b, "click") })
	button.AddOnDoubleClick(func(b *controller.Button) { logGesture(b, "double_click") })

	return nil
}

func logGesture(b *controller.Button, gestureName string) {
	fmt.Printf("[%s] pin %d: %s\n", b.Name, b.PinID(), gestureName)
}
