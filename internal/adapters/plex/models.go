package plex

// Wire types for the Plex MediaContainer envelope. Only the fields the
// mapper reads are declared; everything else in the payload is ignored.

type metadataResponse struct {
	MediaContainer struct {
		Size     int            `json:"size"`
		Metadata []metadataItem `json:"Metadata"`
	} `json:"MediaContainer"`
}

// metadataItem is the shared shape of tracks, albums and artists. Plex nests
// the hierarchy through parent (album) and grandparent (artist) references.
type metadataItem struct {
	RatingKey            string `json:"ratingKey"`
	Type                 string `json:"type"`
	Title                string `json:"title"`
	ParentRatingKey      string `json:"parentRatingKey"`
	ParentTitle          string `json:"parentTitle"`
	ParentYear           int    `json:"parentYear"`
	GrandparentRatingKey string `json:"grandparentRatingKey"`
	GrandparentTitle     string `json:"grandparentTitle"`
	Year                 int    `json:"year"`
	Duration             int64  `json:"duration"` // milliseconds
	AddedAt              int64  `json:"addedAt"`  // unix seconds
	LastViewedAt         int64  `json:"lastViewedAt"`
	ViewCount            int    `json:"viewCount"`

	// Absent means unrated; zero is a valid rating.
	UserRating *float64 `json:"userRating"`

	Genre []tag `json:"Genre"`
}

type tag struct {
	Tag string `json:"tag"`
}

func tagNames(tags []tag) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.Tag
	}
	return out
}

// serverIdentity is the root endpoint payload; the machine identifier is
// needed to build playlist creation URIs.
type serverIdentity struct {
	MediaContainer struct {
		MachineIdentifier string `json:"machineIdentifier"`
	} `json:"MediaContainer"`
}

// playlistResponse covers both playlist listings and playlist creation.
type playlistResponse struct {
	MediaContainer struct {
		Size     int            `json:"size"`
		Metadata []playlistItem `json:"Metadata"`
	} `json:"MediaContainer"`
}

type playlistItem struct {
	RatingKey    string `json:"ratingKey"`
	Title        string `json:"title"`
	PlaylistType string `json:"playlistType"`
	Smart        bool   `json:"smart"`
}
