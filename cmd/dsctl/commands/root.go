// Package commands implements the dsctl CLI commands.
package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/frcnet/godriverstation/internal/ds"
)

var (
	// outputFormat controls the output format for all commands (table or json).
	outputFormat string

	// team is the team number whose robot dsctl connects to.
	team uint32

	// allianceSide and alliancePosition select the starting alliance station.
	allianceSide     string
	alliancePosition uint8

	// settleTime bounds how long the status command waits for a status
	// packet to arrive before giving up. Mutating commands hold the link
	// for the fixed controlSettleTime instead.
	settleTime time.Duration
)

var (
	errUnknownAllianceSide = fmt.Errorf("alliance side must be red or blue")
	errTeamRequired        = fmt.Errorf("--team flag is required")
	errInvalidStation      = fmt.Errorf("--station must be 1-3")
)

// rootCmd is the top-level cobra command for dsctl.
var rootCmd = &cobra.Command{
	Use:           "dsctl",
	Short:         "CLI client for driving or inspecting a robot connection",
	Long:          "dsctl opens a direct driver station connection to a team's robot for the duration of one command.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		if team == 0 {
			return errTeamRequired
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Uint32Var(&team, "team", 0, "team number (required)")
	rootCmd.PersistentFlags().StringVar(&allianceSide, "alliance", "red", "alliance side: red or blue")
	rootCmd.PersistentFlags().Uint8Var(&alliancePosition, "station", 1, "alliance station position (1-3)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "table", "output format: table, json")
	rootCmd.PersistentFlags().DurationVar(&settleTime, "settle", 2*time.Second, "time to wait for the link to settle")

	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(enableCmd())
	rootCmd.AddCommand(disableCmd())
	rootCmd.AddCommand(estopCmd())
	rootCmd.AddCommand(restartCodeCmd())
	rootCmd.AddCommand(rebootRIOCmd())
	rootCmd.AddCommand(versionCmd())
}

// Execute runs the root command and exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func resolveAlliance() (ds.Alliance, error) {
	if alliancePosition < 1 || alliancePosition > 3 {
		return ds.Alliance{}, fmt.Errorf("%w (got %d)", errInvalidStation, alliancePosition)
	}

	switch strings.ToLower(allianceSide) {
	case "red":
		return ds.NewRedAlliance(alliancePosition), nil
	case "blue":
		return ds.NewBlueAlliance(alliancePosition), nil
	default:
		return ds.Alliance{}, fmt.Errorf("%w: %q", errUnknownAllianceSide, allianceSide)
	}
}

func connect() (*ds.DriverStation, error) {
	alliance, err := resolveAlliance()
	if err != nil {
		return nil, err
	}

	station, err := ds.NewTeam(team, alliance)
	if err != nil {
		return nil, fmt.Errorf("connect to team %d: %w", team, err)
	}

	return station, nil
}
