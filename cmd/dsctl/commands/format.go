package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/frcnet/godriverstation/internal/ds"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

var errUnsupportedFormat = errors.New("unsupported output format")

type statusView struct {
	Team         uint32  `json:"team"`
	HaveStatus   bool    `json:"have_status"`
	Mode         string  `json:"mode"`
	BatteryVolts float32 `json:"battery_volts"`
	NeedDate     bool    `json:"need_date"`
	StatusByte   uint8   `json:"status_byte"`
	TraceByte    uint8   `json:"trace_byte"`
}

func statusToView(station *ds.DriverStation) statusView {
	return statusView{
		Team:         team,
		HaveStatus:   station.HaveStatus(),
		Mode:         shortMode(station.Mode()),
		BatteryVolts: station.BatteryVoltage(),
		NeedDate:     station.NeedDate(),
		StatusByte:   station.Status(),
		TraceByte:    station.Trace(),
	}
}

func formatStatus(station *ds.DriverStation, format string) (string, error) {
	v := statusToView(station)

	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal status to JSON: %w", err)
		}
		return string(data) + "\n", nil
	case formatTable:
		var buf strings.Builder
		w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Team:\t%d\n", v.Team)
		fmt.Fprintf(w, "Connected:\t%t\n", v.HaveStatus)
		fmt.Fprintf(w, "Mode:\t%s\n", v.Mode)
		fmt.Fprintf(w, "Battery:\t%.2fV\n", v.BatteryVolts)
		fmt.Fprintf(w, "Need Date:\t%t\n", v.NeedDate)
		fmt.Fprintf(w, "Status Byte:\t0x%02x\n", v.StatusByte)
		fmt.Fprintf(w, "Trace Byte:\t0x%02x\n", v.TraceByte)
		if err := w.Flush(); err != nil {
			return "", fmt.Errorf("flush tabwriter: %w", err)
		}
		return buf.String(), nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}

func shortMode(m ds.Mode) string {
	switch m {
	case ds.ModeTeleoperated:
		return "Teleoperated"
	case ds.ModeAutonomous:
		return "Autonomous"
	case ds.ModeTestMode:
		return "Test"
	default:
		return "Unknown"
	}
}
