package dto

import (
	"encoding/json"
	"sort"
	"strings"
)

// AlphaVantageStatus captures the fields Alpha Vantage embeds in a 200 response
// instead of data (bad symbol, throttling, premium-only endpoints).
type AlphaVantageStatus struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

func (s AlphaVantageStatus) Message() string {
	switch {
	case s.ErrorMessage != "":
		return s.ErrorMessage
	case s.Note != "":
		return s.Note
	default:
		return s.Information
	}
}

type AlphaVantageBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

const (
	avMetaDataKey          = "Meta Data"
	avTimeSeriesPrefix     = "Time Series"
	avTechnicalPrefix      = "Technical Analysis"
	avMetaTimeZoneSuffix   = "Time Zone"
	avTimeSeriesMarshalKey = "Time Series"
)

// AlphaVantageTimeSeries covers TIME_SERIES_INTRADAY and TIME_SERIES_DAILY. The series key
// varies with the interval ("Time Series (5min)", "Time Series (Daily)"), so it is matched by prefix.
type AlphaVantageTimeSeries struct {
	MetaData map[string]interface{}
	Series   map[string]AlphaVantageBar
}

func (t *AlphaVantageTimeSeries) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for key, val := range raw {
		switch {
		case key == avMetaDataKey:
			if err := json.Unmarshal(val, &t.MetaData); err != nil {
				return err
			}
		case strings.HasPrefix(key, avTimeSeriesPrefix):
			if err := json.Unmarshal(val, &t.Series); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t AlphaVantageTimeSeries) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		avMetaDataKey:          t.MetaData,
		avTimeSeriesMarshalKey: t.Series,
	})
}

// TimeZone returns the zone name reported in the meta data, empty when absent.
func (t AlphaVantageTimeSeries) TimeZone() string {
	return metaTimeZone(t.MetaData)
}

func metaTimeZone(meta map[string]interface{}) string {
	for key, val := range meta {
		if !strings.HasSuffix(key, avMetaTimeZoneSuffix) {
			continue
		}
		if zone, ok := val.(string); ok {
			return zone
		}
	}
	return ""
}

// AlphaVantageIndicator covers the SMA and RSI technical indicator responses. Its meta data
// mixes text and numbers ("5: Time Period": 14), so values are kept untyped.
type AlphaVantageIndicator struct {
	MetaData map[string]interface{}
	Values   map[string]map[string]string
}

func (t *AlphaVantageIndicator) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for key, val := range raw {
		switch {
		case key == avMetaDataKey:
			if err := json.Unmarshal(val, &t.MetaData); err != nil {
				return err
			}
		case strings.HasPrefix(key, avTechnicalPrefix):
			if err := json.Unmarshal(val, &t.Values); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t AlphaVantageIndicator) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		avMetaDataKey:     t.MetaData,
		avTechnicalPrefix: t.Values,
	})
}

// TimeZone returns the zone name reported in the meta data, empty when absent.
func (t AlphaVantageIndicator) TimeZone() string {
	return metaTimeZone(t.MetaData)
}

// Latest returns the value recorded at the most recent timestamp.
func (t *AlphaVantageIndicator) Latest() (string, bool) {
	if t == nil || len(t.Values) == 0 {
		return "", false
	}
	keys := make([]string, 0, len(t.Values))
	for k := range t.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, v := range t.Values[keys[len(keys)-1]] {
		return v, true
	}
	return "", false
}

type AlphaVantageOverview struct {
	Symbol               string `json:"Symbol"`
	Name                 string `json:"Name"`
	Description          string `json:"Description,omitempty"`
	Exchange             string `json:"Exchange,omitempty"`
	Currency             string `json:"Currency,omitempty"`
	Sector               string `json:"Sector"`
	Industry             string `json:"Industry"`
	MarketCapitalization string `json:"MarketCapitalization"`
	PERatio              string `json:"PERatio"`
	FiftyTwoWeekHigh     string `json:"52WeekHigh,omitempty"`
	FiftyTwoWeekLow      string `json:"52WeekLow,omitempty"`
}

type AlphaVantageQuote struct {
	Symbol           string `json:"01. symbol"`
	Open             string `json:"02. open"`
	High             string `json:"03. high"`
	Low              string `json:"04. low"`
	Price            string `json:"05. price"`
	Volume           string `json:"06. volume"`
	LatestTradingDay string `json:"07. latest trading day"`
	PreviousClose    string `json:"08. previous close"`
	Change           string `json:"09. change"`
	ChangePercent    string `json:"10. change percent"`
}

type AlphaVantageGlobalQuote struct {
	GlobalQuote AlphaVantageQuote `json:"Global Quote"`
}

type AlphaVantageSearchMatch struct {
	Symbol     string `json:"1. symbol"`
	Name       string `json:"2. name"`
	Type       string `json:"3. type"`
	Region     string `json:"4. region"`
	Currency   string `json:"8. currency"`
	MatchScore string `json:"9. matchScore"`
}

type AlphaVantageSearchResult struct {
	BestMatches []AlphaVantageSearchMatch `json:"bestMatches"`
}

// ExactMatch finds the match whose symbol equals symbol, ignoring case.
func (r *AlphaVantageSearchResult) ExactMatch(symbol string) (AlphaVantageSearchMatch, bool) {
	if r == nil {
		return AlphaVantageSearchMatch{}, false
	}
	for _, m := range r.BestMatches {
		if strings.EqualFold(m.Symbol, symbol) {
			return m, true
		}
	}
	return AlphaVantageSearchMatch{}, false
}
