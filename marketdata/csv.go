package marketdata

import (
	"embed"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"faircrop/agent"
)

//go:embed seed/*.csv
var seedFS embed.FS

// Load builds a Source for every profiled crop. It looks for
// <crop>_price.csv under dir first and falls back to the embedded seed
// report, so the service runs without any external files. A crop with
// neither file simply has no records; analysis reports the no-data
// outcome instead of failing.
func Load(dir string) (*Source, error) {
	records := make(map[string][]agent.PriceRecord, len(cropProfiles))
	for crop := range cropProfiles {
		name := crop + "_price.csv"

		if dir != "" {
			f, err := os.Open(filepath.Join(dir, name))
			if err == nil {
				rs, perr := ParseReport(f)
				f.Close()
				if perr != nil {
					return nil, fmt.Errorf("parse %s: %w", name, perr)
				}
				records[crop] = rs
				continue
			}
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("open %s: %w", name, err)
			}
		}

		seed, err := seedFS.Open("seed/" + name)
		if err != nil {
			continue
		}
		rs, perr := ParseReport(seed)
		seed.Close()
		if perr != nil {
			return nil, fmt.Errorf("parse embedded %s: %w", name, perr)
		}
		records[crop] = rs
	}
	return New(cropProfiles, records), nil
}

// ParseReport reads one Agmarknet daily price CSV: a title row, a header
// row, then one row per market with prices in Rs/quintal. Prices are
// converted to Rs/kg and malformed rows are skipped, matching how the
// source portal mixes formatting across districts.
func ParseReport(r io.Reader) ([]agent.PriceRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) <= 2 {
		return nil, nil
	}

	var out []agent.PriceRecord
	for _, row := range rows[2:] {
		if len(row) < 14 || strings.TrimSpace(row[0]) == "" {
			continue
		}

		minQuintal, err1 := parsePrice(row[7])
		maxQuintal, err2 := parsePrice(row[8])
		modalQuintal, err3 := parsePrice(row[9])
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}

		arrival := 0.0
		if v := strings.TrimSpace(row[11]); v != "" {
			arrival, err = strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}
		}

		out = append(out, agent.PriceRecord{
			District:        normalizeDistrict(row[1]),
			Market:          strings.TrimSpace(row[2]),
			MinPricePerKg:   perKg(minQuintal),
			MaxPricePerKg:   perKg(maxQuintal),
			ModalPricePerKg: perKg(modalQuintal),
			ArrivalTonnes:   arrival,
			Date:            strings.TrimSpace(row[13]),
		})
	}
	return out, nil
}

// parsePrice handles the portal's grouped format, e.g. "3,500.00".
func parsePrice(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	return strconv.ParseFloat(s, 64)
}

func perKg(quintal float64) float64 {
	return math.Round(quintal/100*100) / 100
}

func normalizeDistrict(raw string) string {
	raw = strings.TrimSpace(raw)
	if std, ok := districtAliases[raw]; ok {
		return std
	}
	return raw
}
