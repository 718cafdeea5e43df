package script

import (
	"strings"

	log "github.com/sirupsen/logrus"
)

// Keywords that require 3D rendering
var require3D = []string{
	"cube", "sphere", "pyramid", "cone", "cylinder", "3d", "three dimensional",
	"solid", "volume", "surface", "rotation in space", "spatial", "dimension",
	"polyhedron", "prism", "torus", "geometry 3d",
}

// Keywords that work best in 2D
var better2D = []string{
	"function", "graph", "equation", "chart", "diagram", "flow", "tree",
	"network", "circle", "square", "triangle", "percentage", "angle",
	"algebra", "fraction", "ratio", "animation", "step by step",
}

// Detect3D scores a topic against the 3D and 2D keyword sets and chooses 3D
// only when the 3D score strictly exceeds the 2D score and is nonzero.
// Ties and all-zero scores default to 2D, the performance-favoring choice.
func Detect3D(topic string) bool {
	lower := strings.ToLower(topic)

	d3 := 0
	for _, kw := range require3D {
		if strings.Contains(lower, kw) {
			d3++
		}
	}
	d2 := 0
	for _, kw := range better2D {
		if strings.Contains(lower, kw) {
			d2++
		}
	}

	use3D := d3 > d2 && d3 > 0
	if use3D {
		log.Infof("[script] Scene type: 3D detected (3D score: %d, 2D score: %d)", d3, d2)
	} else {
		log.Infof("[script] Scene type: 2D selected (3D score: %d, 2D score: %d)", d3, d2)
	}
	return use3D
}
