package session

import (
	"context"
	"fmt"

	"github.com/markusressel/tcoracle/internal/device"
	"github.com/markusressel/tcoracle/internal/fans"
	"github.com/markusressel/tcoracle/internal/parameters"
	"github.com/markusressel/tcoracle/internal/sensors"
)

// Target is the read-only view of a device under test
type Target struct {
	Topology   *sensors.Topology
	Parameters *parameters.Parameters
	Direction  parameters.FanDirection
}

// Inspect discovers the device topology, loads its thermal control
// configuration and detects the fan direction without modifying anything
func Inspect(ctx context.Context, reader device.Reader, config Config) (*Target, error) {
	topology, err := sensors.Discover(ctx, reader, config.Discovery)
	if err != nil {
		return nil, err
	}

	tcConfigPath := config.TcConfigPath
	if tcConfigPath == "" {
		tcConfigPath = topology.TcConfigPath()
	}
	raw, err := reader.Read(tcConfigPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read thermal control configuration %s: %w", tcConfigPath, err)
	}
	params, err := parameters.Load([]byte(raw))
	if err != nil {
		return nil, err
	}

	direction, err := fans.ReadDirection(ctx, reader, topology)
	if err != nil {
		return nil, err
	}

	return &Target{
		Topology:   topology,
		Parameters: params,
		Direction:  direction,
	}, nil
}
