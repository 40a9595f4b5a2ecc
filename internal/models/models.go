package models

// Country is keyed by ISO3. JSON keys follow the persisted "paises" collection.
type Country struct {
	Name string `json:"nombre"`
	ISO2 string `json:"codigo_iso"`
	ISO3 string `json:"codigo_iso3"`
}

type Indicator struct {
	ID          string `json:"id_indicador"`
	Description string `json:"descripcion"`
}

// PopulationRecord is one observation of an indicator for a country and year.
// ISO3 and Description are copied from the Country/Indicator at write time.
type PopulationRecord struct {
	Year        int     `json:"ano"`
	Country     string  `json:"pais"`
	ISO3        string  `json:"codigo_iso3"`
	IndicatorID string  `json:"indicador_id"`
	Description string  `json:"descripcion"`
	Value       float64 `json:"valor"`
	Status      string  `json:"estado"`
	Unit        string  `json:"unidad"`
}

// RecordKey is the natural key of a PopulationRecord.
type RecordKey struct {
	Year        int
	ISO3        string
	IndicatorID string
}

func (r PopulationRecord) Key() RecordKey {
	return RecordKey{Year: r.Year, ISO3: r.ISO3, IndicatorID: r.IndicatorID}
}

// --- QUERY RESULTS ---

type GrowthPoint struct {
	Year           int     `json:"year"`
	Population     float64 `json:"population"`
	AbsoluteGrowth float64 `json:"absolute_growth"`
	PercentGrowth  float64 `json:"percent_growth"`
}

type CountryGrowth struct {
	Country       string  `json:"country"`
	AverageGrowth float64 `json:"average_growth"`
}

type DecadeSummary struct {
	Decade     string  `json:"decade"`
	Year       int     `json:"year"`
	Population float64 `json:"population"`
}

type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

type Extrema struct {
	Country    string  `json:"country"`
	MinYear    int     `json:"min_year"`
	MinValue   float64 `json:"min_value"`
	MaxYear    int     `json:"max_year"`
	MaxValue   float64 `json:"max_value"`
	HasRecords bool    `json:"has_records"`
}

type Coverage struct {
	Country       string `json:"country"`
	YearsWithData int    `json:"years_with_data"`
	From          int    `json:"from"`
	To            int    `json:"to"`
	MissingYears  []int  `json:"missing_years"`
	Complete      bool   `json:"complete"`
}
