package investment

import (
	"math"
	"time"
)

// annualRecord is a year-end observation of an index.
type annualRecord struct {
	Year  int
	Value float64
}

// sp500YearEnd holds S&P 500 year-end closing levels.
var sp500YearEnd = []annualRecord{
	{1990, 339.97}, {1991, 417.09}, {1992, 435.71}, {1993, 466.45}, {1994, 459.27},
	{1995, 615.93}, {1996, 740.74}, {1997, 970.43}, {1998, 1229.23}, {1999, 1469.25},
	{2000, 1320.28}, {2001, 1148.08}, {2002, 879.82}, {2003, 1111.92}, {2004, 1211.92},
	{2005, 1248.29}, {2006, 1418.3}, {2007, 1468.36}, {2008, 903.25}, {2009, 1115.1},
	{2010, 1257.64}, {2011, 1257.6}, {2012, 1426.19}, {2013, 1848.36}, {2014, 2058.9},
	{2015, 2043.94}, {2016, 2238.83}, {2017, 2673.61}, {2018, 2506.85}, {2019, 3230.78},
	{2020, 3756.07}, {2021, 4766.18}, {2022, 3839.5}, {2023, 4769.83}, {2024, 5123.25},
}

// usCPIYearEnd holds US CPI-U index levels.
var usCPIYearEnd = []annualRecord{
	{1990, 130.7}, {1991, 136.2}, {1992, 140.3}, {1993, 144.5}, {1994, 148.2},
	{1995, 152.4}, {1996, 156.9}, {1997, 160.5}, {1998, 163.0}, {1999, 166.6},
	{2000, 172.2}, {2001, 177.1}, {2002, 179.9}, {2003, 184.0}, {2004, 188.9},
	{2005, 195.3}, {2006, 201.6}, {2007, 207.3}, {2008, 215.303}, {2009, 214.537},
	{2010, 218.056}, {2011, 224.939}, {2012, 229.594}, {2013, 232.957}, {2014, 236.736},
	{2015, 237.017}, {2016, 240.007}, {2017, 245.12}, {2018, 251.107}, {2019, 255.657},
	{2020, 258.811}, {2021, 271.696}, {2022, 292.655}, {2023, 303.292}, {2024, 309.686},
}

// Rates are suggested values, in percent, for three look-back horizons.
type Rates struct {
	ShortPeriod  float64 `json:"shortPeriod" yaml:"shortPeriod"`
	MediumPeriod float64 `json:"mediumPeriod" yaml:"mediumPeriod"`
	LongPeriod   float64 `json:"longPeriod" yaml:"longPeriod"`
}

// Periods are the number of years each suggestion was actually measured over.
type Periods struct {
	Short  int `json:"short" yaml:"short"`
	Medium int `json:"medium" yaml:"medium"`
	Long   int `json:"long" yaml:"long"`
}

// Suggestions are historical return and inflation figures offered as inputs
// for a projection. They are never consumed by the projection itself.
type Suggestions struct {
	Returns           Rates   `json:"returnSuggestions" yaml:"returnSuggestions"`
	ReturnPeriods     Periods `json:"returnPeriods" yaml:"returnPeriods"`
	Inflation         Rates   `json:"inflationSuggestions" yaml:"inflationSuggestions"`
	InflationPeriods  Periods `json:"inflationPeriods" yaml:"inflationPeriods"`
	LastYearInflation float64 `json:"lastYearInflation" yaml:"lastYearInflation"`
	DataFrom          int     `json:"dataFrom" yaml:"dataFrom"`
	DataTo            int     `json:"dataTo" yaml:"dataTo"`
}

// Suggest computes compound annual growth rates of the S&P 500 and US CPI
// over short, medium and long horizons ending at the latest year of data not
// after now.
func Suggest(now time.Time) Suggestions {
	first := sp500YearEnd[0].Year
	last := sp500YearEnd[len(sp500YearEnd)-1].Year
	dataRange := last - first

	returnHorizons := horizons(dataRange, 15)
	inflationHorizons := horizons(dataRange, 20)
	inflationHorizons.Short = 5

	anchor := min(max(now.Year(), first), last)

	var s Suggestions
	s.DataFrom, s.DataTo = first, last
	s.Returns.ShortPeriod, s.ReturnPeriods.Short = cagr(sp500YearEnd, anchor, returnHorizons.Short)
	s.Returns.MediumPeriod, s.ReturnPeriods.Medium = cagr(sp500YearEnd, anchor, returnHorizons.Medium)
	s.Returns.LongPeriod, s.ReturnPeriods.Long = cagr(sp500YearEnd, anchor, returnHorizons.Long)
	s.Inflation.ShortPeriod, s.InflationPeriods.Short = cagr(usCPIYearEnd, anchor, inflationHorizons.Short)
	s.Inflation.MediumPeriod, s.InflationPeriods.Medium = cagr(usCPIYearEnd, anchor, inflationHorizons.Medium)
	s.Inflation.LongPeriod, s.InflationPeriods.Long = cagr(usCPIYearEnd, anchor, inflationHorizons.Long)
	s.LastYearInflation, _ = cagr(usCPIYearEnd, anchor, 1)
	return s
}

// horizons picks the look-back periods for a dataset spanning dataRange years.
func horizons(dataRange, longFloor int) Periods {
	long := min(dataRange, 30)
	if dataRange >= longFloor {
		long = max(long, longFloor)
	}
	return Periods{
		Short:  min(5, dataRange),
		Medium: min(10, dataRange/2),
		Long:   long,
	}
}

// cagr returns the compound annual growth rate, in percent rounded to one
// decimal, between the first record at or after anchor-years and the record
// at anchor, along with the number of years actually measured.
func cagr(records []annualRecord, anchor, years int) (float64, int) {
	start := records[0]
	for _, r := range records {
		if r.Year >= anchor-years {
			start = r
			break
		}
	}

	end := records[len(records)-1]
	for _, r := range records {
		if r.Year == anchor {
			end = r
			break
		}
	}

	span := end.Year - start.Year
	if span <= 0 || start.Value <= 0 {
		return 0, 0
	}

	rate := math.Pow(end.Value/start.Value, 1/float64(span)) - 1
	return math.Round(rate*1000) / 10, span
}
