package tariff

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sells-group/gajian-cli/internal/model"
)

// Key columns of the rate table files.
const (
	KeyDepth    = "Kedalaman"
	KeyPackages = "Total Koli"
	ColPrice    = "Harga"
)

// Rate is one row of a rate table.
type Rate struct {
	Key   decimal.Decimal `json:"key"`
	Price decimal.Decimal `json:"price"`
}

// RateTable maps a numeric key to a price. Lookups match the key exactly;
// when a key repeats, the first row wins.
type RateTable struct {
	Name  string `json:"name"`
	Rates []Rate `json:"rates"`
}

// Lookup returns the price for key.
func (t RateTable) Lookup(key decimal.Decimal) (decimal.Decimal, bool) {
	for _, r := range t.Rates {
		if r.Key.Equal(key) {
			return r.Price, true
		}
	}
	return decimal.Zero, false
}

// RateTables holds the four read-only lookup tables.
type RateTables struct {
	ExcavationLocal    RateTable `json:"excavation_local"`
	ExcavationExternal RateTable `json:"excavation_external"`
	SamplingLocal      RateTable `json:"sampling_local"`
	SamplingExternal   RateTable `json:"sampling_external"`
}

// Excavation returns the depth-keyed table for tier.
func (rt RateTables) Excavation(tier model.PriceTier) RateTable {
	if tier == model.TierExternal {
		return rt.ExcavationExternal
	}
	return rt.ExcavationLocal
}

// Sampling returns the package-keyed table for tier.
func (rt RateTables) Sampling(tier model.PriceTier) RateTable {
	if tier == model.TierExternal {
		return rt.SamplingExternal
	}
	return rt.SamplingLocal
}

// RatePaths locates the four rate files on disk.
type RatePaths struct {
	ExcavationLocal    string `yaml:"galian_lokal" mapstructure:"galian_lokal"`
	ExcavationExternal string `yaml:"galian_luar" mapstructure:"galian_luar"`
	SamplingLocal      string `yaml:"samplingan_lokal" mapstructure:"samplingan_lokal"`
	SamplingExternal   string `yaml:"samplingan_luar" mapstructure:"samplingan_luar"`
}

// LoadRateTables reads all four rate files.
func LoadRateTables(paths RatePaths) (RateTables, error) {
	var rt RateTables
	var err error
	if rt.ExcavationLocal, err = LoadRateFile(paths.ExcavationLocal, KeyDepth); err != nil {
		return RateTables{}, err
	}
	if rt.ExcavationExternal, err = LoadRateFile(paths.ExcavationExternal, KeyDepth); err != nil {
		return RateTables{}, err
	}
	if rt.SamplingLocal, err = LoadRateFile(paths.SamplingLocal, KeyPackages); err != nil {
		return RateTables{}, err
	}
	if rt.SamplingExternal, err = LoadRateFile(paths.SamplingExternal, KeyPackages); err != nil {
		return RateTables{}, err
	}

	zap.L().Info("tariff: rate tables loaded",
		zap.Int("galian_lokal", len(rt.ExcavationLocal.Rates)),
		zap.Int("galian_luar", len(rt.ExcavationExternal.Rates)),
		zap.Int("samplingan_lokal", len(rt.SamplingLocal.Rates)),
		zap.Int("samplingan_luar", len(rt.SamplingExternal.Rates)),
	)
	return rt, nil
}

// LoadRateFile reads one rate CSV keyed by keyCol.
func LoadRateFile(path, keyCol string) (RateTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RateTable{}, eris.Wrapf(err, "tariff: read rate file %s", path)
	}
	return DecodeRates(path, bytes.NewReader(data), keyCol)
}

type rateRow struct {
	Key   string `csv:"key"`
	Price string `csv:"price"`
}

// DecodeRates parses a rate CSV with key column keyCol and a Harga column.
// Rows with a blank key or price are skipped.
func DecodeRates(name string, r io.Reader, keyCol string) (RateTable, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return RateTable{}, eris.Wrapf(err, "tariff: read %s", name)
	}
	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return RateTable{}, eris.Wrapf(model.ErrValidation, "tariff: %s has no header row", name)
	}

	// Rename the two columns we need so one struct serves both key kinds.
	renamed := make([]string, len(header))
	var haveKey, havePrice bool
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case keyCol:
			renamed[i], haveKey = "key", true
		case ColPrice:
			renamed[i], havePrice = "price", true
		default:
			renamed[i] = "_" + strconv.Itoa(i)
		}
	}
	if !haveKey || !havePrice {
		return RateTable{}, eris.Wrapf(model.ErrValidation, "tariff: %s needs columns %q and %q", name, keyCol, ColPrice)
	}

	dec, err := csvutil.NewDecoder(cr, renamed...)
	if err != nil {
		return RateTable{}, eris.Wrapf(err, "tariff: decoder for %s", name)
	}

	table := RateTable{Name: name}
	for line := 2; ; line++ {
		var row rateRow
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return RateTable{}, eris.Wrapf(err, "tariff: decode %s line %d", name, line)
		}

		keyCell, priceCell := strings.TrimSpace(row.Key), strings.TrimSpace(row.Price)
		if keyCell == "" || priceCell == "" {
			continue
		}
		key, err := decimal.NewFromString(keyCell)
		if err != nil {
			return RateTable{}, eris.Wrapf(model.ErrValidation, "tariff: %s line %d: key %q is not numeric", name, line, keyCell)
		}
		price, err := decimal.NewFromString(priceCell)
		if err != nil {
			return RateTable{}, eris.Wrapf(model.ErrValidation, "tariff: %s line %d: price %q is not numeric", name, line, priceCell)
		}
		table.Rates = append(table.Rates, Rate{Key: key, Price: price})
	}
	return table, nil
}
