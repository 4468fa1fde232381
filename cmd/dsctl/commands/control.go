package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/frcnet/godriverstation/internal/ds"
)

// controlSettleTime bounds how long a mutating command keeps the link
// open after issuing its request — long enough for a handful of
// control packets carrying the change to reach the robot, since the
// facade only queues a mutation for the next tick rather than sending
// it immediately.
const controlSettleTime = 500 * time.Millisecond

func enableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable",
		Short: "Enable the robot",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withStation(func(station *ds.DriverStation) {
				station.Enable()
			}, "enabled")
		},
	}
}

func disableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable",
		Short: "Disable the robot",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withStation(func(station *ds.DriverStation) {
				station.Disable()
			}, "disabled")
		},
	}
}

func estopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "estop",
		Short: "Emergency-stop the robot",
		Long:  "Latches the estop flag. There is no corresponding un-estop command; recovering requires a fresh driver station session, matching the field's own failsafe design.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withStation(func(station *ds.DriverStation) {
				station.Estop()
			}, "emergency-stopped")
		},
	}
}

func restartCodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart-code",
		Short: "Request the robot restart user code",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withStation(func(station *ds.DriverStation) {
				station.RestartCode()
			}, "code restart requested")
		},
	}
}

func rebootRIOCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reboot-rio",
		Short: "Request the robot controller reboot",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withStation(func(station *ds.DriverStation) {
				station.RebootRIO()
			}, "reboot requested")
		},
	}
}

// withStation connects, applies mutate, holds the link open long
// enough for the change to reach the robot, and reports result.
func withStation(mutate func(*ds.DriverStation), result string) error {
	station, err := connect()
	if err != nil {
		return err
	}
	defer station.Close()

	mutate(station)
	time.Sleep(controlSettleTime)

	fmt.Printf("team %d: %s\n", team, result)

	return nil
}
