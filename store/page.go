package store

import "github.com/rajithacharith/thunder-sub007/resource"

const (
	DefaultPageSize = 30
	MaxPageSize     = 100

	// MaxCompositeStoreRecords bounds the pre-dedup record count a composite
	// listing may hold in memory.
	MaxCompositeStoreRecords = 1000

	CompositeStoreLimitWarning = "Result limit exceeded in hybrid mode. Use search for larger datasets."
)

// PageRequest selects a window of a listing. A zero Limit means unspecified.
type PageRequest struct {
	Offset int `json:"offset" yaml:"offset"`
	Limit  int `json:"limit" yaml:"limit"`
}

// Normalize clamps the request to the public paging contract: offset is at
// least zero and limit falls within [1, MaxPageSize], DefaultPageSize when
// unspecified.
func (p PageRequest) Normalize() PageRequest {
	normalized := p
	if normalized.Offset < 0 {
		normalized.Offset = 0
	}
	switch {
	case normalized.Limit <= 0:
		normalized.Limit = DefaultPageSize
	case normalized.Limit > MaxPageSize:
		normalized.Limit = MaxPageSize
	}
	return normalized
}

// Window returns the sub-slice of items addressed by the request. Limit must
// already be positive.
func (p PageRequest) Window(items []resource.Resource) []resource.Resource {
	if p.Offset >= len(items) {
		return []resource.Resource{}
	}
	end := len(items)
	if p.Limit > 0 && p.Offset+p.Limit < end {
		end = p.Offset + p.Limit
	}
	window := make([]resource.Resource, end-p.Offset)
	copy(window, items[p.Offset:end])
	return window
}

// PageResult is one page of a listing plus the non-fatal diagnostics raised
// while producing it.
type PageResult struct {
	Items []resource.Resource `json:"items" yaml:"items"`
	// TotalCount is exact for single-source listings. For truncated composite
	// listings it counts only the records that fit under the ceiling and
	// TotalCapped is set.
	TotalCount  int          `json:"totalCount" yaml:"totalCount"`
	TotalCapped bool         `json:"totalCapped,omitempty" yaml:"totalCapped,omitempty"`
	Truncated   bool         `json:"truncated" yaml:"truncated"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Warning returns the message of the first LimitExceeded diagnostic, if any.
func (r PageResult) Warning() string {
	for _, diagnostic := range r.Diagnostics {
		if diagnostic.Code == DiagnosticLimitExceeded {
			return diagnostic.Message
		}
	}
	return ""
}
