// Package report renders read-only views of a simulation run: per-day CSV
// tables, population charts, lattice snapshots and MJPEG recordings.
// Nothing here mutates engine state.
package report

import (
	"image/color"

	"github.com/resistance-sim/resistance-sim/sim"
)

// GridSource is the read-only spatial query surface the renderers need.
// *sim.Engine satisfies it.
type GridSource interface {
	Width() int
	Height() int
	OccupantAt(pos sim.Position) (sim.AgentView, bool)
}

// Cell colors. Resistance colors take precedence over the persister color,
// and later drugs in drugPrecedence win over earlier ones.
var (
	ColorEmpty       = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	ColorSusceptible = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 255}
	ColorPersister   = color.RGBA{R: 0x8b, G: 0x00, B: 0x00, A: 255}
	ColorResistant   = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 255} // drugs without a dedicated color

	drugColors = map[sim.DrugID]color.RGBA{
		sim.Rifampicin:   {R: 0xd4, G: 0xff, B: 0x00, A: 255},
		sim.Isoniazid:    {R: 0x37, G: 0xff, B: 0x00, A: 255},
		sim.Pyrazinamide: {R: 0x00, G: 0x44, B: 0xff, A: 255},
		sim.Ethambutol:   {R: 0xff, G: 0x00, B: 0xd9, A: 255},
	}
	drugPrecedence = []sim.DrugID{sim.Rifampicin, sim.Isoniazid, sim.Pyrazinamide, sim.Ethambutol}
)

// DrugColor returns the series/cell color used for drug.
func DrugColor(drug sim.DrugID) color.RGBA {
	if c, ok := drugColors[drug]; ok {
		return c
	}
	return ColorResistant
}

// AgentColor returns the cell color of an agent.
func AgentColor(a sim.AgentView) color.RGBA {
	c := ColorSusceptible
	if a.Phenotype == sim.Persister {
		c = ColorPersister
	}
	if a.Resistance.IsSusceptible() {
		return c
	}
	c = ColorResistant
	for _, d := range drugPrecedence {
		if a.Resistance.IsResistant(d) {
			c = drugColors[d]
		}
	}
	return c
}
