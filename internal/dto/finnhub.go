package dto

type FinnhubCompanyProfile struct {
	Country              string  `json:"country"`
	Currency             string  `json:"currency"`
	Exchange             string  `json:"exchange"`
	Name                 string  `json:"name"`
	Ticker               string  `json:"ticker"`
	Logo                 string  `json:"logo"`
	WebURL               string  `json:"weburl"`
	FinnhubIndustry      string  `json:"finnhubIndustry"`
	MarketCapitalization float64 `json:"marketCapitalization"`
}
