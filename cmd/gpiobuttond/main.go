package main

import (
	"github.com/larsks/gpiobuttond/internal/cli"
	"github.com/larsks/gpiobuttond/internal/daemon"
)

func main() {
	cli.StandardMain(func() cli.Configurable {
		return daemon.NewConfig()
	}, daemon.Handler{})
}
