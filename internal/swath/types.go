package swath

import (
	"fmt"
	"strings"
	"time"

	"github.com/ctessum/sparse"
)

// NavID identifies a navigation set: the bucket of input files sharing one
// geolocation/scan geometry.
type NavID string

// Known navigation sets.
const (
	CrISNav NavID = "cris_nav"
	IASINav NavID = "iasi_nav"
	AIRSNav NavID = "airs_nav"

	INav  NavID = "i_nav"
	MNav  NavID = "m_nav"
	DNBNav NavID = "dnb_nav"
)

// DataKind describes the physical quantity a band carries. It drives how
// downstream remapping and encoding treat the data.
type DataKind string

// BandKind names the product family a band belongs to.
type BandKind string

const (
	KindCAPE             DataKind = "cape"
	KindCO2Amount        DataKind = "co2_amount"
	KindOpticalThickness DataKind = "optical_thickness"
	KindPressure         DataKind = "pressure"
	KindTemperature      DataKind = "temperature"
	KindEmissivity       DataKind = "emissivity"
	KindCategory         DataKind = "category"
	KindMixingRatio      DataKind = "mixing_ratio"
	KindPercent          DataKind = "percent"
	KindTotalWater       DataKind = "total_water"
	KindTotalOzone       DataKind = "total_ozone"
)

// DefaultFill is the fill value substituted for masked elements in every
// normalized array and flat-binary file.
const DefaultFill = -999.0

// missingTolerance is the absolute half-unit tolerance around a declared
// missing-value sentinel.
const missingTolerance = 0.5

// FileInfo holds the metadata parsed from one input filename. It exists
// only during classification; the swath metadata built later carries the
// surviving fields.
type FileInfo struct {
	Path        string
	Satellite   string
	Instrument  string
	StartTime   time.Time
	RowsPerScan int
	NavSet      NavID
}

// PressureProfile is the ordered list of pressure levels (hPa) along the
// layer axis of a navigation set's 3-D variables.
type PressureProfile []float64

// SourceVariable is one variable read out of an instrument container.
// MissingValue is nil when the source declares no sentinel.
type SourceVariable struct {
	Name         string
	Data         *sparse.DenseArray
	MissingValue *float64
}

// Array is a normalized swath array. Mask is aligned with Data.Elements;
// a nil Mask means no element is masked. Masked elements already hold the
// fill value, the mask records which ones.
type Array struct {
	Data *sparse.DenseArray
	Mask []bool
	Fill float64
}

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.Data.Shape) }

// Rows returns the in-track dimension.
func (a *Array) Rows() int { return a.Data.Shape[0] }

// Cols returns the cross-track dimension. Valid for rank >= 2.
func (a *Array) Cols() int { return a.Data.Shape[1] }

// BandKey identifies one output band by (kind, id).
type BandKey struct {
	Kind BandKind
	ID   string
}

// MarshalText renders the key as "kind" or "kind:id" so BandKey can be used
// as a JSON map key.
func (k BandKey) MarshalText() ([]byte, error) {
	if k.ID == "" {
		return []byte(k.Kind), nil
	}
	return []byte(string(k.Kind) + ":" + k.ID), nil
}

// UnmarshalText parses the form produced by MarshalText.
func (k *BandKey) UnmarshalText(text []byte) error {
	kind, id, _ := strings.Cut(string(text), ":")
	if kind == "" {
		return fmt.Errorf("empty band key %q", text)
	}
	k.Kind = BandKind(kind)
	k.ID = id
	return nil
}

// BandDescriptor describes one extracted band: what it is and where its
// flat-binary file lives. All descriptors within one Metadata share the
// same swath geometry.
type BandDescriptor struct {
	Kind        BandKind `json:"kind"`
	ID          string   `json:"id,omitempty"`
	DataKind    DataKind `json:"data_kind"`
	RemapAs     DataKind `json:"remap_data_as"`
	Path        string   `json:"fbf_img"`
	Rows        int      `json:"swath_rows"`
	Cols        int      `json:"swath_cols"`
	Scans       int      `json:"swath_scans"`
	RowsPerScan int      `json:"rows_per_scan"`
	Fill        float64  `json:"fill_value"`
	Grids       string   `json:"grids"`
}

// GridsAny marks a band as remappable to any grid the determination stage
// selects.
const GridsAny = "any"

// Metadata is the per-navigation-set handoff to downstream collaborators.
// The flat-binary files it points at are the real interchange artifact;
// Metadata itself is discarded once the group finishes.
type Metadata struct {
	Satellite   string                      `json:"sat"`
	Instrument  string                      `json:"instrument"`
	NavSet      NavID                       `json:"nav_set_uid"`
	StartTime   time.Time                   `json:"start_time"`
	Rows        int                         `json:"swath_rows"`
	Cols        int                         `json:"swath_cols"`
	Scans       int                         `json:"swath_scans"`
	RowsPerScan int                         `json:"rows_per_scan"`
	LatPath     string                      `json:"fbf_lat"`
	LonPath     string                      `json:"fbf_lon"`
	Bands       map[BandKey]BandDescriptor  `json:"bands"`
	ExtractedAt time.Time                   `json:"extracted_at"`
}
