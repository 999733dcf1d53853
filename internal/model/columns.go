package model

// Column headers of the field spreadsheet and the operator templates.
const (
	ColSiteCode     = "Kode Testpit"
	ColGrid         = "Grid"
	ColProspect     = "Prospek"
	ColSamplingDate = "Tanggal Sampling"
	ColDepth        = "Total Kedalaman"
	ColPackages     = "Total Koli"
	ColLandowner    = "Pemilik Lahan"
	ColExcavator    = "Penggali"
	ColTransporter  = "Pengangkut"
	ColBackfiller   = "Penimbun"

	ColLocation      = "Lokasi"
	ColStartDate     = "Tanggal Mulai (2025-05-23)"
	ColEndDate       = "Tanggal Selesai (2025-05-23)"
	ColPayDate       = "Tanggal Gajian (2025-05-23)"
	ColTransportMode = "Sistem Angkutan (Koli/Kilo)"

	ColWorkerGroup    = "Kelompok Penggali"
	ColExcavationTier = "Harga Galian (Lokal/Luar)"
	ColSamplingTier   = "Harga Samplingan (Lokal/Luar)"

	ColEnrichedTransport = "SistemAngkutan"

	ColTariffExcavation   = "Tarif Galian"
	ColTariffSampling     = "Tarif Samplingan"
	ColTariffBackfill     = "Tarif Timbunan"
	ColTariffCompensation = "Tarif Kompensasi"
	ColTariffTransport    = "Tarif Angkutan"
	ColTariffRelay        = "Tarif Langsiran"
	ColTotal              = "Total"
)

// RawColumns is the canonical projection of an uploaded field table.
var RawColumns = []string{
	ColSiteCode,
	ColGrid,
	ColProspect,
	ColSamplingDate,
	ColDepth,
	ColPackages,
	ColLandowner,
	ColExcavator,
	ColTransporter,
	ColBackfiller,
}

// LocationColumns is the header of the location template.
var LocationColumns = []string{
	ColLocation,
	ColStartDate,
	ColEndDate,
	ColPayDate,
	ColTransportMode,
}

// WorkerColumns is the header of the worker template.
var WorkerColumns = []string{
	ColExcavator,
	ColWorkerGroup,
	ColExcavationTier,
	ColSamplingTier,
}

// TariffColumns lists the six tariff columns in calculation order.
var TariffColumns = []string{
	ColTariffExcavation,
	ColTariffSampling,
	ColTariffBackfill,
	ColTariffCompensation,
	ColTariffTransport,
	ColTariffRelay,
}
