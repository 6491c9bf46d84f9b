// Package rates serves the reference interest rate, bank mortgage offers and
// currency exchange rates.
package rates

import (
	"github.com/iwvelando/mortgage-calculator/pkg/money"
)

// BaseRate is the reference rate mortgage offers are quoted against.
type BaseRate struct {
	Name        string  `json:"name" yaml:"name"`
	BaseRate    float64 `json:"baseRate" yaml:"baseRate"`
	LastUpdated string  `json:"lastUpdated" yaml:"lastUpdated"`
}

// BankOffer is one bank's variable-rate mortgage offer.
type BankOffer struct {
	BankName      string  `json:"bankName" yaml:"bankName"`
	Margin        float64 `json:"margin" yaml:"margin"`
	BaseRateName  string  `json:"baseRateName" yaml:"baseRateName"`
	BaseRateValue float64 `json:"baseRateValue" yaml:"baseRateValue"`
	TotalRate     float64 `json:"totalRate" yaml:"totalRate"`
}

const wibor6MName = "WIBOR 6M"

// wibor6MPercent is published alongside WIBOR 3M; offers indexed to it use this value.
const wibor6MPercent = 5.90

var bankMargins = []struct {
	bank     string
	margin   float64
	sixMonth bool
}{
	{"PKO BP", 2.30, false},
	{"Santander", 2.39, false},
	{"ING Bank Śląski", 2.15, true},
	{"mBank", 2.40, false},
	{"Millennium", 2.20, true},
}

// BaseRate returns the configured reference rate.
func (s *Service) BaseRate() BaseRate {
	return BaseRate{
		Name:        s.conf.BaseRateName,
		BaseRate:    s.conf.BaseRate,
		LastUpdated: s.conf.LastUpdated,
	}
}

// BankOffers returns the bank offers with TotalRate = base rate + margin.
func (s *Service) BankOffers() []BankOffer {
	base := s.BaseRate()
	offers := make([]BankOffer, 0, len(bankMargins))
	for _, m := range bankMargins {
		name, value := base.Name, base.BaseRate
		if m.sixMonth {
			name, value = wibor6MName, wibor6MPercent
		}
		offers = append(offers, BankOffer{
			BankName:      m.bank,
			Margin:        m.margin,
			BaseRateName:  name,
			BaseRateValue: value,
			TotalRate:     money.Percent(value, m.margin),
		})
	}
	return offers
}
