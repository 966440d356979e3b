package fans

import (
	"context"

	"github.com/markusressel/tcoracle/internal/device"
	"github.com/markusressel/tcoracle/internal/parameters"
	"github.com/markusressel/tcoracle/internal/sensors"
	"github.com/markusressel/tcoracle/internal/ui"
	"github.com/markusressel/tcoracle/internal/util"
)

// DetectDirection returns the direction reported by the majority of the fan drawers,
// a tie resolves to C2P
func DetectDirection(readings []parameters.FanDirection) parameters.FanDirection {
	c2p := 0
	p2c := 0
	for _, r := range readings {
		switch r {
		case parameters.C2P:
			c2p++
		case parameters.P2C:
			p2c++
		}
	}
	if p2c > c2p {
		return parameters.P2C
	}
	return parameters.C2P
}

// ReadDirection reads the direction of every fan drawer and votes on the system direction.
// Unreadable drawers are skipped.
func ReadDirection(ctx context.Context, reader device.Reader, topology *sensors.Topology) (parameters.FanDirection, error) {
	var readings []parameters.FanDirection
	for _, drawer := range util.Range(1, topology.FanDrawers()) {
		if err := ctx.Err(); err != nil {
			return parameters.C2P, err
		}
		p := topology.FanDirPath(drawer)
		value, err := reader.Read(p)
		if err != nil {
			ui.Warning("Unable to read direction of fan drawer %d: %v", drawer, err)
			continue
		}
		direction, err := parameters.ParseDirection(value)
		if err != nil {
			ui.Warning("Invalid direction of fan drawer %d: %v", drawer, err)
			continue
		}
		readings = append(readings, direction)
	}

	if len(readings) <= 0 {
		ui.Warning("No fan drawer reported a direction, assuming %s", parameters.C2P)
	}

	direction := DetectDirection(readings)
	ui.Debug("Detected fan direction %s from %d drawers", direction, len(readings))
	return direction, nil
}
