package swath

// InstrumentKey looks up an entry in the instrument table. Satellite is ""
// for entries that match any platform carrying the instrument.
type InstrumentKey struct {
	Satellite  string
	Instrument string
}

// InstrumentInfo resolves a filename's (satellite, instrument) pair to
// canonical identifiers plus the scan geometry downstream remapping needs.
type InstrumentInfo struct {
	Satellite   string
	Instrument  string
	RowsPerScan int
	NavSet      NavID
}

// VariableInfo describes how one source variable becomes output bands.
// A nil Pressures slice means the variable passes through whole; otherwise
// one band is extracted per listed pressure level.
type VariableInfo struct {
	DataKind  DataKind
	BandKind  BandKind
	Pressures []float64
}

// Guidebook is the read-only configuration consulted during classification
// and manifest building. Callers inject one rather than the package holding
// process-wide tables.
type Guidebook struct {
	Instruments map[InstrumentKey]InstrumentInfo
	Variables   map[string]VariableInfo

	// Structural variables: consulted for geometry and geolocation, never
	// extracted as bands.
	GeometryVar string
	PressureVar string
	LatVar      string
	LonVar      string
}

// DefaultLayerPressures are the levels (hPa) extracted from layered
// variables when the table does not say otherwise.
var DefaultLayerPressures = []float64{500, 900}

// DefaultGuidebook returns the guidebook for the supported dual-regression
// retrieval products.
func DefaultGuidebook() *Guidebook {
	return &Guidebook{
		Instruments: map[InstrumentKey]InstrumentInfo{
			{"", "CRIS"}:    {Satellite: "npp", Instrument: "cris", RowsPerScan: 3, NavSet: CrISNav},
			{"", "CrIS"}:    {Satellite: "npp", Instrument: "cris", RowsPerScan: 3, NavSet: CrISNav},
			{"M02", "IASI"}: {Satellite: "metopa", Instrument: "iasi", RowsPerScan: 1, NavSet: IASINav},
			{"M01", "IASI"}: {Satellite: "metopb", Instrument: "iasi", RowsPerScan: 1, NavSet: IASINav},
			{"", "AIRS"}:    {Satellite: "aqua", Instrument: "airs", RowsPerScan: 1, NavSet: AIRSNav},
		},
		Variables: map[string]VariableInfo{
			"CAPE":         {KindCAPE, "cape", nil},
			"CO2_Amount":   {KindCO2Amount, "co2_amt", nil},
			"COT":          {KindOpticalThickness, "cot", nil},
			"CTP":          {KindPressure, "ctp", nil},
			"CTT":          {KindTemperature, "ctt", nil},
			"CldEmis":      {KindEmissivity, "cld_emis", nil},
			"Cmask":        {KindCategory, "cmask", nil},
			"Dewpnt":       {KindTemperature, "dewpt", DefaultLayerPressures},
			"H2OMMR":       {KindMixingRatio, "h2o_mmr", DefaultLayerPressures},
			"Lifted_Index": {KindTemperature, "li", nil},
			"O3VMR":        {KindMixingRatio, "o3_vmr", DefaultLayerPressures},
			"RelHum":       {KindPercent, "rh", DefaultLayerPressures},
			"SurfPres":     {KindPressure, "srf_p", nil},
			"TAir":         {KindTemperature, "air_t", DefaultLayerPressures},
			"TSurf":        {KindTemperature, "srf_t", nil},
			"totH2O":       {KindTotalWater, "h2o_tot", nil},
			"totO3":        {KindTotalOzone, "o3_tot", nil},
		},
		GeometryVar: "RelHum",
		PressureVar: "Plevs",
		LatVar:      "Latitude",
		LonVar:      "Longitude",
	}
}

// lookupInstrument resolves (sat, inst) with preference to an exact match,
// falling back to the satellite-less entry for the instrument.
func (g *Guidebook) lookupInstrument(sat, inst string) (InstrumentInfo, bool) {
	if info, ok := g.Instruments[InstrumentKey{sat, inst}]; ok {
		return info, true
	}
	info, ok := g.Instruments[InstrumentKey{"", inst}]
	return info, ok
}
