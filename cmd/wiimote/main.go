package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/wiimote"
	"github.com/rigado/wiimote/linux"
	"github.com/rigado/wiimote/linux/hci/h4"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "wiimote"
	app.Usage = "discover Wii Remotes and Balance Boards and stream their reports"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.IntFlag{Name: "device, d", Value: -1, Usage: "hci index, -1 for the first usable one"},
		cli.StringFlag{Name: "uart", Usage: "h4 uart path"},
		cli.UintFlag{Name: "baud", Value: h4.DefaultSerialOptions().BaudRate, Usage: "h4 uart baud rate"},
		cli.StringFlag{Name: "tcp", Usage: "h4 socket server address"},
		cli.StringFlag{Name: "name", Value: "wiimote-host", Usage: "local name written during bring-up"},
		cli.BoolFlag{Name: "restart", Usage: "restart inquiry after a link drops"},
		cli.StringFlag{Name: "log-level", Value: "info", Usage: "trace, debug, info, warn or error"},
	}
	app.Before = func(c *cli.Context) error {
		return wiimote.SetLogLevelName(c.GlobalString("log-level"))
	}
	app.Commands = []cli.Command{
		{
			Name:  "scan",
			Usage: "connect to every peripheral found and print its events",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "json", Usage: "one json object per event"},
				cli.UintFlag{Name: "leds", Value: 0x01, Usage: "player LED mask set on connect"},
				cli.BoolFlag{Name: "reports", Usage: "include input reports"},
			},
			Action: cmdScan,
		},
		{
			Name:  "balance",
			Usage: "print balance board weights",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "json", Usage: "one json object per sample"},
				cli.DurationFlag{Name: "interval", Value: 500 * time.Millisecond, Usage: "minimum time between samples"},
			},
			Action: cmdBalance,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func transportOption(c *cli.Context) wiimote.Option {
	switch {
	case c.GlobalString("uart") != "":
		return wiimote.OptTransportH4Uart(c.GlobalString("uart"), c.GlobalUint("baud"))
	case c.GlobalString("tcp") != "":
		return wiimote.OptTransportH4Socket(c.GlobalString("tcp"), 2*time.Second)
	default:
		return wiimote.OptTransportHCISocket(c.GlobalInt("device"))
	}
}

// withSigHandler cancels the returned context on SIGINT or SIGTERM.
func withSigHandler(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sig:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sig)
	}()
	return ctx, cancel
}

// run opens the device from the global flags and hands its events to eh
// until interrupted.
func run(c *cli.Context, eh func(*session, wiimote.Event)) error {
	s := &session{out: newPrinter(os.Stdout, c.Bool("json"))}

	opts := []wiimote.Option{
		transportOption(c),
		wiimote.OptLocalName(c.GlobalString("name")),
		wiimote.OptRestartScanOnDisconnect(c.GlobalBool("restart")),
		wiimote.OptEventHandler(func(e wiimote.Event) { eh(s, e) }),
		wiimote.OptErrorHandler(func(err error) { s.out.printError(err) }),
	}

	dev, err := linux.NewDevice(opts...)
	if err != nil {
		return errors.Wrap(err, "can't open device")
	}
	s.setDevice(dev)
	defer dev.Close()

	ctx, cancel := withSigHandler(context.Background())
	defer cancel()

	err = dev.Run(ctx, 2*time.Millisecond)
	if errors.Cause(err) == context.Canceled {
		return nil
	}
	return err
}

func cmdScan(c *cli.Context) error {
	leds := uint8(c.Uint("leds"))
	reports := c.Bool("reports")

	return run(c, func(s *session, e wiimote.Event) {
		switch e.Type {
		case wiimote.EventConnected:
			if dev := s.device(); dev != nil {
				if err := dev.SetLED(e.Handle, leds); err != nil {
					s.out.printError(err)
				}
			}
		case wiimote.EventReport:
			if !reports {
				return
			}
		}
		s.out.printEvent(e)
	})
}

func cmdBalance(c *cli.Context) error {
	interval := c.Duration("interval")
	last := map[uint16]time.Time{}

	return run(c, func(s *session, e wiimote.Event) {
		if e.Type != wiimote.EventReport {
			s.out.printEvent(e)
			return
		}
		dev := s.device()
		if dev == nil || len(e.Data) < 2 || e.Data[1] != 0x34 {
			return
		}
		if time.Since(last[e.Handle]) < interval {
			return
		}

		w, err := dev.BalanceWeight(e.Handle, e.Data)
		if err != nil {
			wiimote.GetLogger().Debugf("%04X: %v", e.Handle, err)
			return
		}
		last[e.Handle] = time.Now()
		s.out.printWeights(e, w)
	})
}
