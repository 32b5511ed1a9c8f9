package scryfall

import "encoding/json"

// searchPage is one page of /cards/search. Data stays raw so that a missing
// or non-array field can be told apart from an empty result.
type searchPage struct {
	Object   string          `json:"object"`
	Data     json.RawMessage `json:"data"`
	HasMore  bool            `json:"has_more"`
	NextPage string          `json:"next_page"`
}

// cardEntry holds the fields read from each card object. Pointers mark
// fields that may be absent or null.
type cardEntry struct {
	Name          *string   `json:"name"`
	Colors        *[]string `json:"colors"`
	ColorIdentity *[]string `json:"color_identity"`
}

// colorSource returns the colors to classify: colors when present, else
// color_identity, else nothing.
func (e cardEntry) colorSource() []string {
	if e.Colors != nil {
		return *e.Colors
	}
	if e.ColorIdentity != nil {
		return *e.ColorIdentity
	}
	return nil
}

// apiError is the body Scryfall sends with non-2xx responses
type apiError struct {
	Object   string   `json:"object"`
	Code     string   `json:"code"`
	Status   int      `json:"status"`
	Details  string   `json:"details"`
	Warnings []string `json:"warnings"`
}
