package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/frcnet/godriverstation/internal/ds"
)

const statusPollInterval = 50 * time.Millisecond

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the robot's current status",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			station, err := connect()
			if err != nil {
				return err
			}
			defer station.Close()

			waitForStatus(station, settleTime)

			out, err := formatStatus(station, outputFormat)
			if err != nil {
				return fmt.Errorf("format status: %w", err)
			}

			fmt.Print(out)

			return nil
		},
	}
}

// waitForStatus polls until a status packet has arrived or deadline
// elapses, whichever comes first — a robot that never responds still
// gets a best-effort status print rather than hanging the command
// indefinitely.
func waitForStatus(station *ds.DriverStation, deadline time.Duration) {
	ticker := time.NewTicker(statusPollInterval)
	defer ticker.Stop()

	timeout := time.After(deadline)
	for {
		if station.HaveStatus() {
			return
		}
		select {
		case <-ticker.C:
		case <-timeout:
			return
		}
	}
}
