// Command fbfinfo inventories a directory of flat-binary interchange files.
// It verifies each filename against the FBF grammar, cross-checks the byte
// size against the encoded dimensions, and prints per-file statistics.
// Exits non-zero if any file is inconsistent.
//
// Usage:
//
//	go run ./cmd/fbfinfo -dir work/
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/polarorbit/sounder-data-etl/internal/fbf"
	"github.com/polarorbit/sounder-data-etl/internal/swath"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// phase tracks pass/fail for one inspection phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dir := flag.String("dir", ".", "directory to inventory")
	flag.Parse()

	if code := run(*dir); code != 0 {
		os.Exit(code)
	}
}

func run(dir string) int {
	fmt.Println("=== FBF Inventory ===")
	fmt.Println()

	paths, err := findFBFs(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: scan %s: %v\n", dir, err)
		return 1
	}
	if len(paths) == 0 {
		fmt.Printf("no FBF files under %s\n", dir)
		return 0
	}

	phases := []*phase{
		checkNames(paths),
		checkSizes(paths),
		printStats(paths),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		mark := "PASS"
		if !p.passed() {
			mark = "FAIL"
			allPassed = false
		}
		fmt.Printf("[%s] %s\n", mark, p.name)
		for _, e := range p.errors {
			fmt.Printf("       - %s\n", e)
		}
	}
	if !allPassed {
		return 1
	}
	return 0
}

// findFBFs collects paths whose basename carries an FBF dtype suffix.
func findFBFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.Contains(e.Name(), "."+fbf.SuffixReal4+".") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func checkNames(paths []string) *phase {
	p := &phase{name: "filename grammar"}
	for _, path := range paths {
		if _, err := fbf.ParseName(filepath.Base(path)); err != nil {
			p.errorf("%v", err)
		}
	}
	return p
}

func checkSizes(paths []string) *phase {
	p := &phase{name: "byte size vs encoded dimensions"}
	for _, path := range paths {
		info, err := fbf.ParseName(filepath.Base(path))
		if err != nil {
			continue // reported by the grammar phase
		}
		st, err := os.Stat(path)
		if err != nil {
			p.errorf("stat %s: %v", path, err)
			continue
		}
		want := int64(info.Rows) * int64(info.Cols) * 4
		if st.Size() != want {
			p.errorf("%s: %d bytes on disk, filename implies %d", path, st.Size(), want)
		}
	}
	return p
}

// printStats reads each file and reports min/max/mean/stddev over the
// unfilled elements.
func printStats(paths []string) *phase {
	p := &phase{name: "per-file statistics"}
	for _, path := range paths {
		arr, err := fbf.Read(path)
		if err != nil {
			p.errorf("read %s: %v", path, err)
			continue
		}
		valid := make([]float64, 0, len(arr.Data.Elements))
		filled := 0
		for _, x := range arr.Data.Elements {
			if x == swath.DefaultFill {
				filled++
				continue
			}
			valid = append(valid, x)
		}
		base := filepath.Base(path)
		if len(valid) == 0 {
			fmt.Printf("%-44s %4dx%-4d  all fill\n", base, arr.Cols(), arr.Rows())
			continue
		}
		fmt.Printf("%-44s %4dx%-4d  min %10.3f  max %10.3f  mean %10.3f  std %9.3f  fill %d\n",
			base, arr.Cols(), arr.Rows(),
			floats.Min(valid), floats.Max(valid),
			stat.Mean(valid, nil), stat.StdDev(valid, nil), filled)
	}
	return p
}
