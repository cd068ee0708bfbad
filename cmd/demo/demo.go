package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/santarl/vigem-client/bus"
	"github.com/santarl/vigem-client/util"
	"github.com/santarl/vigem-client/vigem"
)

var (
	configPath string
	useDummy   bool
	verbose    bool
)

func checkErr(err error, message string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s - %s\n", message, err)
		os.Exit(1)
	}
}

// setup connects to the bus (or spins up the in-memory dummy driver) and
// loads the feeder profile.
func setup() (*vigem.Client, *bus.DummyChannel, *configStore) {
	util.SetLogOutput(os.Stderr)
	if verbose {
		util.SetLogLevel(util.LogLevelTrace)
	}
	store, err := newConfigStore(configPath)
	checkErr(err, "Could not load config")

	if useDummy {
		channel := bus.NewDummyChannel()
		return vigem.NewClient(channel), channel, store
	}
	client, err := vigem.Connect()
	checkErr(err, "Could not connect to bus driver")
	return client, nil, store
}

func targetId(config Config, fallback vigem.TargetId) vigem.TargetId {
	id := fallback
	if config.VendorID != 0 {
		id.Vendor = config.VendorID
	}
	if config.ProductID != 0 {
		id.Product = config.ProductID
	}
	return id
}

func teardown(loopErr error, closers ...func() error) {
	var errs *multierror.Error
	if loopErr != nil && !errors.Is(loopErr, vigem.ErrOperationAborted) {
		errs = multierror.Append(errs, loopErr)
	}
	for _, closer := range closers {
		errs = multierror.Append(errs, closer())
	}
	checkErr(errs.ErrorOrNil(), "Teardown failed")
}

func runDS4(cmd *cobra.Command, args []string) {
	client, dummy, store := setup()
	target := vigem.NewDualShock4Wired(client, targetId(store.current(), vigem.TargetIdDualShock4Wired))

	checkErr(target.Plugin(), "Could not plug in controller")
	checkErr(target.WaitReady(), "Controller did not become ready")

	notification, err := target.RequestNotification()
	checkErr(err, "Could not request notifications")
	done := notification.SpawnLoop(func(report bus.DS4OutputReport) {
		color := report.LightbarColor
		fmt.Printf("feedback: small=%d large=%d lightbar=#%02x%02x%02x\n",
			report.SmallMotor, report.LargeMotor, color.Red, color.Green, color.Blue)
	})

	start := time.Now()
	for time.Since(start) < store.duration() {
		elapsed := time.Since(start).Seconds()
		report := bus.NewDS4Report()
		report.ThumbLX = uint8((math.Cos(elapsed) + 1) * 127)
		report.ThumbLY = uint8((math.Sin(elapsed) + 1) * 127)
		report.TriggerL = uint8((math.Sin(elapsed*1.5) + 1) * 127)
		report.TriggerR = uint8((math.Cos(elapsed*1.5) + 1) * 127)
		checkErr(target.Update(report), "Could not submit report")

		if dummy != nil && store.current().EchoOutput {
			dummy.CompleteDS4Notification(target.SerialNo(), bus.DS4OutputReport{
				SmallMotor:    report.TriggerL,
				LargeMotor:    report.TriggerR,
				LightbarColor: bus.DS4LightbarColor{Blue: report.ThumbLX},
			})
		}
		time.Sleep(store.updateInterval())
	}

	target.Close()
	teardown(<-done, client.Close, store.Close)
}

func runX360(cmd *cobra.Command, args []string) {
	client, dummy, store := setup()
	target := vigem.NewXbox360Wired(client, targetId(store.current(), vigem.TargetIdXbox360Wired))

	checkErr(target.Plugin(), "Could not plug in controller")
	checkErr(target.WaitReady(), "Controller did not become ready")

	notification, err := target.RequestNotification()
	checkErr(err, "Could not request notifications")
	done := notification.SpawnLoop(func(report bus.XUSBOutputReport) {
		fmt.Printf("feedback: small=%d large=%d led=%d\n",
			report.SmallMotor, report.LargeMotor, report.LedNumber)
	})

	start := time.Now()
	for time.Since(start) < store.duration() {
		elapsed := time.Since(start).Seconds()
		report := bus.XUSBReport{
			ThumbLX:      int16(math.Cos(elapsed) * 32000),
			ThumbLY:      int16(math.Sin(elapsed) * 32000),
			LeftTrigger:  uint8((math.Sin(elapsed*1.5) + 1) * 127),
			RightTrigger: uint8((math.Cos(elapsed*1.5) + 1) * 127),
		}
		checkErr(target.Update(report), "Could not submit report")

		if dummy != nil && store.current().EchoOutput {
			dummy.CompleteXUSBNotification(target.SerialNo(), bus.XUSBOutputReport{
				LargeMotor: report.LeftTrigger,
				SmallMotor: report.RightTrigger,
				LedNumber:  1,
			})
		}
		time.Sleep(store.updateInterval())
	}

	target.Close()
	teardown(<-done, client.Close, store.Close)
}

var rootCmd = &cobra.Command{
	Use:   "demo",
	Short: "Virtual gamepad demo",
	Long:  `Feeds synthetic input to a virtual controller and echoes feedback notifications`,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML feeder profile, reloaded on change")
	rootCmd.PersistentFlags().BoolVar(&useDummy, "dummy", false, "Run against the in-memory dummy driver")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable trace logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "ds4",
		Short: "Feed a virtual DualShock 4",
		Run:   runDS4,
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "x360",
		Short: "Feed a virtual Xbox 360 pad",
		Run:   runX360,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
