package model

// Place is a normalized business entry. It is created once from a single
// provider record and never mutated afterwards.
type Place struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Lat            float64  `json:"lat"`
	Lng            float64  `json:"lng"`
	Rating         float64  `json:"rating"`
	ReviewCount    int      `json:"reviewCount"`
	MapsURL        string   `json:"gmapsUrl"`
	Website        string   `json:"website,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	PhotoURLs      []string `json:"photos,omitempty"`
	Trade          string   `json:"trade"`
	RawTypes       []string `json:"types,omitempty"`
	Hours          []string `json:"hours,omitempty"`
	BusinessStatus string   `json:"businessStatus"`
}

// Leaderboard holds the ranked id lists for a single trade. The id lists are
// capped at ten entries each; Total is the full partition size.
type Leaderboard struct {
	Total        int      `json:"total"`
	TopRated     []string `json:"top_rated"`
	WorstRated   []string `json:"worst_rated"`
	MostReviewed []string `json:"most_reviewed"`
}
