package daemon

import (
	"fmt"
	"log"
	"syscall"
	"time"

	"github.com/larsks/gpiobuttond/internal/api"
	"github.com/larsks/gpiobuttond/internal/cli"
	"github.com/larsks/gpiobuttond/internal/controller"
	"github.com/larsks/gpiobuttond/internal/gesture"
	"github.com/larsks/gpiobuttond/internal/hwdriver"
	"github.com/larsks/gpiobuttond/internal/hwdriver/dummy"
	"github.com/larsks/gpiobuttond/internal/hwdriver/gpiocdev"
	"github.com/larsks/gpiobuttond/internal/mqttpublish"
)

// Handler implements cli.CommandHandler: it builds a driver, a
// controller, and whichever of the MQTT publisher and status API the
// configuration enables, then runs the controller until signalled.
type Handler struct{}

var _ cli.CommandHandler = Handler{}

// Start builds and runs the service described by config.
func (Handler) Start(config cli.Configurable) error {
	cfg, ok := config.(*Config)
	if !ok {
		return fmt.Errorf("daemon: unexpected config type %T", config)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("daemon: invalid configuration: %w", err)
	}

	driver, err := newDriver(cfg)
	if err != nil {
		return err
	}

	ctrl := controller.New(driver)

	var injector api.EdgeInjector
	if d, ok := driver.(*dummy.Driver); ok {
		injector = d
	}

	var publisher *mqttpublish.Publisher
	if cfg.MQTTEnable {
		publisher, err = mqttpublish.New(mqttpublish.Config{
			ServerURL:   cfg.MQTTServerURL,
			ClientID:    cfg.MQTTClientID,
			TopicPrefix: cfg.MQTTTopicPrefix,
			QoS:         byte(cfg.MQTTQoS),
		})
		if err != nil {
			return fmt.Errorf("daemon: starting mqtt publisher: %w", err)
		}
		defer publisher.Close()
	}

	errs := api.NewErrorCollector()
	for _, bc := range cfg.Buttons {
		button, err := makeButton(ctrl, bc)
		if err != nil {
			errs.Add(fmt.Sprintf("button %q", bc.Name), err)
			continue
		}
		if publisher != nil {
			button.AddOnPress(publisher.Handler("press"))
			button.AddOnRelease(publisher.Handler("release"))
			button.AddOnLongPress(publisher.Handler("long_press"))
			button.AddOnClick(publisher.Handler("click"))
			button.AddOnDoubleClick(publisher.Handler("double_click"))
		}
		log.Printf("daemon: registered button %q on pin %d", button.Name, button.PinID())
	}
	if errs.HasErrors() {
		return errs.Result("daemon: configuring buttons")
	}

	if cfg.APIEnable {
		apiCfg := &api.Config{
			ListenAddress: cfg.APIListenAddress,
			ListenPort:    cfg.APIListenPort,
		}
		server := api.NewServer(apiCfg, ctrl, injector)
		go func() {
			if err := server.Start(); err != nil {
				log.Printf("daemon: status api stopped: %v", err)
			}
		}()
	}

	ctrl.StopOnSignals(syscall.SIGINT, syscall.SIGTERM)
	return ctrl.Run()
}

func newDriver(cfg *Config) (hwdriver.Driver, error) {
	if cfg.Dummy {
		return dummy.New(), nil
	}
	d, err := gpiocdev.New(cfg.Chip)
	if err != nil {
		return nil, fmt.Errorf("daemon: opening %s: %w", cfg.Chip, err)
	}
	return d, nil
}

func makeButton(ctrl *controller.Controller, bc ButtonConfig) (*controller.Button, error) {
	polarity := gesture.PressedWhenHigh
	if bc.Polarity == "active-low" {
		polarity = gesture.PressedWhenLow
	}

	pull := hwdriver.PullNone
	switch bc.Pull {
	case "up":
		pull = hwdriver.PullUp
	case "down":
		pull = hwdriver.PullDown
	}

	button, err := ctrl.MakeButton(bc.Pin, polarity, pull, bc.Name, bc.BounceMs)
	if err != nil {
		return nil, err
	}

	if bc.DoubleClickTimeoutMs > 0 || bc.LongPressTimeoutMs > 0 {
		button.SetTimeouts(
			msToDuration(bc.DoubleClickTimeoutMs),
			msToDuration(bc.LongPressTimeoutMs),
		)
	}

	return button, nil
}

func msToDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
