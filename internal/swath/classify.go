package swath

import (
	"errors"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"time"
)

// ErrNoMatch reports a filename matching neither input grammar.
var ErrNoMatch = errors.New("filename matches no known naming convention")

var (
	// sounderRe chops dual-regression retrieval filenames into identifying
	// pieces, e.g. IASI_d20130310_t152624_M02.atm_prof_rtv.h5.
	sounderRe = regexp.MustCompile(`^(?P<inst>[A-Za-z0-9]+)_d(?P<date>\d{8})_t(?P<time>\d{6})(?:_(?P<sat>[A-Za-z0-9]+))?.*\.(?:h5|nc)$`)

	// imagerRe matches imager granule filenames by their band-family prefix,
	// e.g. SVM04_npp_d20130330_t0554477_e0556119_b07391....h5. The trailing
	// timestamp digit is tenths of a second and is dropped.
	imagerRe = regexp.MustCompile(`^(?P<prefix>SVI|SVM|SVDNB)\d*_(?P<sat>[A-Za-z0-9]+)_d(?P<date>\d{8})_t(?P<time>\d{7})`)
)

// imagerNav maps an imager filename prefix to its navigation set and scan
// geometry.
var imagerNav = map[string]struct {
	nav NavID
	rps int
}{
	"SVI":   {INav, 32},
	"SVM":   {MNav, 16},
	"SVDNB": {DNBNav, 16},
}

// FileInfo parses one pathname against both grammars and resolves it through
// the instrument table. Returns ErrNoMatch when the basename fits neither
// grammar or names an unknown instrument.
func (g *Guidebook) FileInfo(path string) (FileInfo, error) {
	base := filepath.Base(path)

	if m := sounderRe.FindStringSubmatch(base); m != nil {
		inst, date, hhmmss, sat := m[1], m[2], m[3], m[4]
		info, ok := g.lookupInstrument(sat, inst)
		if !ok {
			return FileInfo{}, ErrNoMatch
		}
		when, err := time.Parse("20060102 150405", date+" "+hhmmss)
		if err != nil {
			return FileInfo{}, ErrNoMatch
		}
		return FileInfo{
			Path:        path,
			Satellite:   info.Satellite,
			Instrument:  info.Instrument,
			StartTime:   when,
			RowsPerScan: info.RowsPerScan,
			NavSet:      info.NavSet,
		}, nil
	}

	if m := imagerRe.FindStringSubmatch(base); m != nil {
		prefix, sat, date, hhmmsss := m[1], m[2], m[3], m[4]
		nav := imagerNav[prefix]
		when, err := time.Parse("20060102 150405", date+" "+hhmmsss[:6])
		if err != nil {
			return FileInfo{}, ErrNoMatch
		}
		return FileInfo{
			Path:        path,
			Satellite:   sat,
			Instrument:  prefix,
			StartTime:   when,
			RowsPerScan: nav.rps,
			NavSet:      nav.nav,
		}, nil
	}

	return FileInfo{}, ErrNoMatch
}

// Classify buckets input paths into disjoint navigation sets. Paths are
// absolutized, de-duplicated, and sorted first so the same inputs always
// produce the same buckets in the same order. Files matching no grammar are
// returned in rejected and logged at warn, never fatal.
func (g *Guidebook) Classify(paths []string, logger *slog.Logger) (map[NavID][]string, []string) {
	seen := make(map[string]struct{}, len(paths))
	unique := make([]string, 0, len(paths))
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		unique = append(unique, p)
	}
	sort.Strings(unique)

	groups := make(map[NavID][]string)
	var rejected []string
	for _, p := range unique {
		info, err := g.FileInfo(p)
		if err != nil {
			logger.Warn("don't know what to do with file, skipping", "path", p)
			rejected = append(rejected, p)
			continue
		}
		groups[info.NavSet] = append(groups[info.NavSet], p)
	}
	return groups, rejected
}

// StartTimes parses the start timestamp out of each path for upstream
// schedulers. Paths matching no grammar are skipped.
func (g *Guidebook) StartTimes(paths []string) []time.Time {
	var times []time.Time
	for _, p := range paths {
		info, err := g.FileInfo(p)
		if err != nil {
			continue
		}
		times = append(times, info.StartTime)
	}
	return times
}
