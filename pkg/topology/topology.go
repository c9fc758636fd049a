// Package topology resolves the connection points ("handles") a node exposes.
//
// Most node types carry a fixed list declared at registration time. The switch
// type derives its handles from the instance's mode, so resolution always takes
// the instance data and never depends on earlier results.
package topology

import (
	"errors"
	"fmt"
)

// Side is the edge of the node a handle sits on
type Side string

const (
	SideLeft   Side = "left"
	SideRight  Side = "right"
	SideTop    Side = "top"
	SideBottom Side = "bottom"
)

// Direction is the connection direction of a handle
type Direction string

const (
	Input  Direction = "input"
	Output Direction = "output"
)

// Color is a semantic color token; the canvas maps tokens to theme colors
type Color string

const (
	ColorNeutral      Color = "neutral"
	ColorModel        Color = "model"
	ColorClip         Color = "clip"
	ColorVAE          Color = "vae"
	ColorLatent       Color = "latent"
	ColorConditioning Color = "conditioning"
	ColorImage        Color = "image"
	ColorText         Color = "text"
	ColorData         Color = "data"
	ColorSignal       Color = "signal"
)

// Kind distinguishes static from instance-derived topologies
type Kind string

const (
	KindFixed   Kind = "fixed"
	KindDerived Kind = "derived"
)

// ErrDuplicateHandle is returned when two handles on one node share an id
var ErrDuplicateHandle = errors.New("duplicate handle id")

// HandlePoint is one addressable connection endpoint on a node
type HandlePoint struct {
	ID        string    `json:"id" yaml:"id"`
	Side      Side      `json:"side" yaml:"side"`
	Direction Direction `json:"direction" yaml:"direction"`
	Offset    float64   `json:"offset" yaml:"offset"` // fraction along the side, exclusive of 0 and 1
	Color     Color     `json:"color" yaml:"color"`
}

// Topology yields the handles for one node instance
type Topology interface {
	Kind() Kind
	Resolve(data map[string]any) []HandlePoint
}

// Fixed is a topology enumerated at registration time
type Fixed []HandlePoint

func (f Fixed) Kind() Kind { return KindFixed }

// Resolve returns a copy of the declared handles; data is ignored
func (f Fixed) Resolve(map[string]any) []HandlePoint {
	out := make([]HandlePoint, len(f))
	copy(out, f)
	return out
}

// Generic returns the four-handle layout most node types use:
// inputs on the left and top, outputs on the right and bottom.
func Generic() Fixed {
	return Fixed{
		{ID: "l", Side: SideLeft, Direction: Input, Offset: 0.5, Color: ColorNeutral},
		{ID: "t", Side: SideTop, Direction: Input, Offset: 0.5, Color: ColorNeutral},
		{ID: "r", Side: SideRight, Direction: Output, Offset: 0.5, Color: ColorNeutral},
		{ID: "b", Side: SideBottom, Direction: Output, Offset: 0.5, Color: ColorNeutral},
	}
}

// Port names one handle for Column
type Port struct {
	ID    string
	Color Color
}

// Column lays out ports evenly along one side
func Column(side Side, dir Direction, ports ...Port) Fixed {
	offsets := Distribute(len(ports))
	out := make(Fixed, len(ports))
	for i, p := range ports {
		out[i] = HandlePoint{ID: p.ID, Side: side, Direction: dir, Offset: offsets[i], Color: p.Color}
	}
	return out
}

// Join concatenates fixed layouts
func Join(parts ...Fixed) Fixed {
	var out Fixed
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Offset returns the position of point i of n along a side: (i+1)/(n+1)
func Offset(i, n int) float64 {
	return float64(i+1) / float64(n+1)
}

// Distribute returns n evenly spaced offsets, or an empty slice when n <= 0
func Distribute(n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = Offset(i, n)
	}
	return out
}

// Resolve computes the handles of an instance and checks id uniqueness
func Resolve(t Topology, data map[string]any) ([]HandlePoint, error) {
	points := t.Resolve(data)
	if err := Validate(points); err != nil {
		return nil, err
	}
	return points, nil
}

// Validate checks that handle ids are unique
func Validate(points []HandlePoint) error {
	seen := make(map[string]bool, len(points))
	for _, p := range points {
		if seen[p.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateHandle, p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

// Find returns the handle with the given id
func Find(points []HandlePoint, id string) (HandlePoint, bool) {
	for _, p := range points {
		if p.ID == id {
			return p, true
		}
	}
	return HandlePoint{}, false
}

// Filter returns the handles with the given direction, in order
func Filter(points []HandlePoint, dir Direction) []HandlePoint {
	var out []HandlePoint
	for _, p := range points {
		if p.Direction == dir {
			out = append(out, p)
		}
	}
	return out
}
