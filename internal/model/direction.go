package model

import "github.com/pkg/errors"

// Direction tags which side of a node a neighbor sits on. Left neighbors have
// strictly smaller identifiers than the node, right neighbors strictly larger.
type Direction uint8

const (
	DirectionLeft Direction = iota
	DirectionRight
)

func (d Direction) Opposite() Direction {
	if d == DirectionLeft {
		return DirectionRight
	}
	return DirectionLeft
}

func (d Direction) Valid() bool {
	return d == DirectionLeft || d == DirectionRight
}

func (d Direction) String() string {
	switch d {
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	default:
		return "invalid"
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, errors.Errorf("invalid direction %d", uint8(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	switch string(text) {
	case "left":
		*d = DirectionLeft
	case "right":
		*d = DirectionRight
	default:
		return errors.Errorf("invalid direction %q", string(text))
	}
	return nil
}
