package swath

import (
	"fmt"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// LayerTool slices one 2-D layer out of a (layer, row, col) array. Tools are
// built into manifest entries so extraction can stay ignorant of which level
// a band wants.
type LayerTool func(data *sparse.DenseArray) (*sparse.DenseArray, error)

// ManifestEntry is the extraction plan for one output band.
type ManifestEntry struct {
	SourceVar string
	Tool      LayerTool
	BandKind  BandKind
	DataKind  DataKind
	BandID    string
}

// NearestLayerIndex returns the index of the profile level with minimal
// absolute distance to p. Equidistant levels resolve to the first minimum;
// the observed behavior of the source system leaves the tie-break
// unspecified, so no stronger guarantee is made.
func NearestLayerIndex(profile PressureProfile, p float64) int {
	dist := make([]float64, len(profile))
	for i, lev := range profile {
		dist[i] = lev - p
		if dist[i] < 0 {
			dist[i] = -dist[i]
		}
	}
	return floats.MinIdx(dist)
}

// LayerAtPressure builds a tool extracting the layer nearest p from arrays
// indexed (layer, row, col), using the group's pressure profile.
func LayerAtPressure(profile PressureProfile, p float64) LayerTool {
	return func(data *sparse.DenseArray) (*sparse.DenseArray, error) {
		if len(data.Shape) != 3 {
			return nil, fmt.Errorf("layer slice needs a 3-D array, got shape %v", data.Shape)
		}
		dex := NearestLayerIndex(profile, p)
		if dex >= data.Shape[0] {
			return nil, fmt.Errorf("layer %d outside array with %d layers", dex, data.Shape[0])
		}
		rows, cols := data.Shape[1], data.Shape[2]
		out := sparse.ZerosDense(rows, cols)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				out.Set(data.Get(dex, r, c), r, c)
			}
		}
		return out, nil
	}
}

// BuildManifest derives the extraction plan for one navigation group from
// the guidebook's variable table and the group's pressure profile. Variables
// without pressure levels yield one passthrough entry named after the
// variable; variables with N levels yield N entries named {var}_{level}mb.
// Variables absent from the table yield nothing.
func BuildManifest(g *Guidebook, profile PressureProfile) map[string]ManifestEntry {
	manifest := make(map[string]ManifestEntry, len(g.Variables))
	for name, info := range g.Variables {
		if len(info.Pressures) == 0 {
			manifest[name] = ManifestEntry{
				SourceVar: name,
				BandKind:  info.BandKind,
				DataKind:  info.DataKind,
			}
			continue
		}
		for _, p := range info.Pressures {
			out := fmt.Sprintf("%s_%dmb", name, int(p))
			manifest[out] = ManifestEntry{
				SourceVar: name,
				Tool:      LayerAtPressure(profile, p),
				BandKind:  info.BandKind,
				DataKind:  info.DataKind,
				BandID:    fmt.Sprintf("lvl%d", int(p)),
			}
		}
	}
	return manifest
}
