package voucher

import (
	"github.com/shopspring/decimal"

	"github.com/sells-group/gajian-cli/internal/model"
)

// Category is one payment voucher kind. Each renders to its own sheet.
type Category string

const (
	Excavation   Category = "excavation"
	Sampling     Category = "sampling"
	Backfill     Category = "backfill"
	Compensation Category = "compensation"
	Transport    Category = "transport"
	Relay        Category = "relay"
)

// Categories lists every category in sheet order.
var Categories = []Category{Excavation, Sampling, Backfill, Compensation, Transport, Relay}

type signatureKind int

const (
	workerSignature signatureKind = iota
	locationSignature
)

// cell is one column value of a data row. Numbers render as numeric cells.
type cell struct {
	text   string
	number decimal.Decimal
	isNum  bool
}

func text(s string) cell { return cell{text: s} }
func number(d decimal.Decimal) cell { return cell{number: d, isNum: true} }

// Layout is the fixed shape of one category's voucher block.
type Layout struct {
	Category    Category
	Sheet       string
	Title       string
	Description string
	Headers     []string

	// PriceCol is the 1-based column holding the price.
	PriceCol int
	// SortByOwner orders rows by landowner within each group.
	SortByOwner bool
	// Subtotal writes a per-landowner sum in the column after the price.
	Subtotal bool

	signature signatureKind
	groupKey  func(model.TariffedRecord) string
	price     func(model.TariffedRecord) decimal.Decimal
	columns   func(model.TariffedRecord) []cell
}

var layouts = map[Category]Layout{
	Excavation: {
		Category:    Excavation,
		Sheet:       "Galian",
		Title:       "PENGGALIAN TEST PIT",
		Description: "Untuk Pembayaran Penggalian Test Pit sbb :",
		Headers:     []string{"No", "Tgl. Selesai", "Kode Tespit", "Kedalaman (m)", "Harga Borongan"},
		PriceCol:    6,
		signature:   workerSignature,
		groupKey:    byWorker,
		price: func(r model.TariffedRecord) decimal.Decimal {
			if r.Tariffs.Excavation.Valid {
				return r.Tariffs.Excavation.Decimal
			}
			return decimal.Zero
		},
		columns: func(r model.TariffedRecord) []cell {
			return []cell{text(r.SamplingDate.String()), text(r.SiteCode), number(r.Depth)}
		},
	},
	Sampling: {
		Category:    Sampling,
		Sheet:       "Samplingan",
		Title:       "PENYAMPLINGAN TEST PIT",
		Description: "Untuk Pembayaran Penyamplingan Test Pit sbb :",
		Headers:     []string{"No", "Tgl. Selesai", "Kode Tespit", "Total Koli", "Harga Borongan"},
		PriceCol:    6,
		signature:   workerSignature,
		groupKey:    byWorker,
		price:       func(r model.TariffedRecord) decimal.Decimal { return r.Tariffs.Sampling },
		columns: func(r model.TariffedRecord) []cell {
			return []cell{text(r.SamplingDate.String()), text(r.SiteCode), number(r.Packages)}
		},
	},
	Backfill: {
		Category:    Backfill,
		Sheet:       "Timbunan",
		Title:       "PEMBAYARAN TIMBUNAN TEST PIT",
		Description: "Untuk Pembayaran Timbunan Test Pit sbb :",
		Headers:     []string{"No", "Tgl. Selesai", "Kode Tespit", "Grid", "Pemilik Lahan", "Kedalaman (m)", "Harga Borongan", "TTD"},
		PriceCol:    8,
		SortByOwner: true,
		signature:   locationSignature,
		groupKey:    byLocation,
		price:       func(r model.TariffedRecord) decimal.Decimal { return r.Tariffs.Backfill },
		columns: func(r model.TariffedRecord) []cell {
			return append(siteCells(r), number(r.Depth))
		},
	},
	Compensation: {
		Category:    Compensation,
		Sheet:       "Kompensasi",
		Title:       "PEMBAYARAN KOMPENSASI LAHAN",
		Description: "Untuk Pembayaran Kompensasi Lahan sbb :",
		Headers:     []string{"No", "Tgl. Selesai", "Kode Tespit", "Grid", "Pemilik Lahan", "Harga Kompensasi", "Total Kompensasi", "TTD"},
		PriceCol:    7,
		SortByOwner: true,
		Subtotal:    true,
		signature:   locationSignature,
		groupKey:    byLocation,
		price:       func(r model.TariffedRecord) decimal.Decimal { return r.Tariffs.Compensation },
		columns:     siteCells,
	},
	Transport: {
		Category:    Transport,
		Sheet:       "Angkutan",
		Title:       "PEMBAYARAN ANGKUTAN SAMPEL",
		Description: "Untuk Pembayaran Angkutan Sampel sbb :",
		Headers:     []string{"No", "Tgl. Selesai", "Kode Tespit", "Grid", "Pemilik Lahan", "Harga Angkutan", "TTD"},
		PriceCol:    7,
		SortByOwner: true,
		signature:   locationSignature,
		groupKey:    byLocation,
		price:       func(r model.TariffedRecord) decimal.Decimal { return r.Tariffs.Transport },
		columns:     siteCells,
	},
	Relay: {
		Category:    Relay,
		Sheet:       "Langsiran",
		Title:       "PEMBAYARAN LANGSIRAN SAMPEL",
		Description: "Untuk Pembayaran Langsiran Sampel sbb :",
		Headers:     []string{"No", "Tgl. Selesai", "Kode Tespit", "Grid", "Pemilik Lahan", "Harga Langsiran", "TTD"},
		PriceCol:    7,
		signature:   locationSignature,
		groupKey:    byLocation,
		price:       func(r model.TariffedRecord) decimal.Decimal { return r.Tariffs.Relay },
		columns:     siteCells,
	},
}

// LayoutFor returns the layout of c.
func LayoutFor(c Category) (Layout, bool) {
	l, ok := layouts[c]
	return l, ok
}

func byWorker(r model.TariffedRecord) string { return r.Excavator }
func byLocation(r model.TariffedRecord) string { return r.Location }

func siteCells(r model.TariffedRecord) []cell {
	return []cell{text(r.SamplingDate.String()), text(r.SiteCode), text(r.Grid), text(r.Landowner)}
}

// lastCol is the rightmost column of the block; headers start at column B.
func (l Layout) lastCol() int { return len(l.Headers) + 1 }
