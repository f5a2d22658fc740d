package dto

import "time"

type PromptType string

const (
	PromptTypeFull     PromptType = "full"
	PromptTypeBasic    PromptType = "basic"
	PromptTypeFallback PromptType = "fallback"
	PromptTypeUnknown  PromptType = "unknown"
)

type DataSource string

const (
	DataSourceRealtime DataSource = "real-time"
	DataSourceDatabase DataSource = "database"
	DataSourceCache    DataSource = "cache"
)

const (
	NoteDatabaseFallback = "Analysis based on fundamental data due to market data unavailability"
	NoteHighLoad         = "Simplified analysis provided due to high system load"
)

// CachedSuggestion is what the orchestrator stores under ai:suggestion:<SYMBOL>.
type CachedSuggestion struct {
	Suggestion string     `json:"suggestion"`
	PromptType PromptType `json:"promptType,omitempty"`
	DataSource DataSource `json:"dataSource,omitempty"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
	Note       string     `json:"note,omitempty"`
}

type SuggestionResponse struct {
	Success    bool       `json:"success"`
	FromCache  bool       `json:"fromCache"`
	Suggestion string     `json:"suggestion"`
	PromptType PromptType `json:"promptType"`
	DataSource DataSource `json:"dataSource"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
	Note       string     `json:"note,omitempty"`
}

// FromCachedSuggestion builds the cache-hit response. Entries written before the
// tier was recorded fall back to "unknown"/"cache".
func FromCachedSuggestion(c CachedSuggestion) *SuggestionResponse {
	resp := &SuggestionResponse{
		Success:    true,
		FromCache:  true,
		Suggestion: c.Suggestion,
		PromptType: c.PromptType,
		DataSource: c.DataSource,
		Timestamp:  c.Timestamp,
		Note:       c.Note,
	}
	if resp.PromptType == "" {
		resp.PromptType = PromptTypeUnknown
	}
	if resp.DataSource == "" {
		resp.DataSource = DataSourceCache
	}
	return resp
}
