// Package swath models atmospheric-sounder retrieval swaths and the rules
// for turning raw instrument files into normalized swath arrays.
//
// # Input Files
//
// Two filename grammars are recognized. Dual-regression retrieval files
// follow the sounder grammar:
//
//	<INST>_dYYYYMMDD_tHHMMSS[_SAT]...(.h5|.nc)
//	e.g. IASI_d20130310_t152624_M02.atm_prof_rtv.h5
//
// where the (satellite, instrument) pair is resolved against the guidebook's
// instrument table, falling back to a satellite-less entry when the filename
// omits the satellite (CrIS files name only the instrument; the table
// supplies the platform default). Imager granules follow the prefix grammar:
//
//	(SVI|SVM|SVDNB)<band>_<sat>_dYYYYMMDD_tHHMMSSS...
//
// and are bucketed purely by their prefix. Files matching neither grammar
// are rejected, never fatal.
//
// # Navigation Sets
//
// Files sharing one geolocation/scan geometry form a navigation set and are
// processed together as a single swath. Known sets are cris_nav, iasi_nav
// and airs_nav for the sounder grammar, and i_nav, m_nav and dnb_nav for
// the imager grammar. Sets never share input files or output-name prefixes,
// which is what lets downstream processing run one worker per set with no
// coordination.
//
// # Array Conventions
//
// Retrieval variables are indexed [layer, in-track, cross-track] when 3-D
// and [in-track, cross-track] when 2-D. Normalization produces canonical
// (row, col[, layer]) ordering: a layer-selection tool reduces 3-D data to
// one pressure layer, and passthrough 3-D variables get the layer axis
// rolled to the last position. A declared missing-value sentinel masks
// every element within 0.5 of it and substitutes the fixed fill value
// -999.0; the mask is retained alongside the data until the flat-binary
// writer re-applies the fill on output.
//
// # Manifest
//
// The guidebook's variable table drives extraction: each source variable
// maps to a data kind, a band kind, and an optional list of pressure levels.
// Variables without levels produce one passthrough band named after the
// variable; variables with N levels produce N bands named {var}_{level}mb,
// each carrying a tool that slices the layer nearest the requested pressure.
package swath
