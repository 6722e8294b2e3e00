package sweep

import (
	"go.uber.org/zap"

	"github.com/zurihub/places-cli/internal/category"
	"github.com/zurihub/places-cli/internal/model"
	"github.com/zurihub/places-cli/pkg/places"
)

// placeholderName replaces a missing display name.
const placeholderName = "Unbekannt"

// maxPhotoURLs caps the photo references carried per place.
const maxPhotoURLs = 3

// normalize converts a raw provider record into a Place. Returns false for
// records below the category's review threshold or without an id; those
// never enter the deduplication map, not even transiently.
func (s *Sweeper) normalize(raw places.Place, cat category.Category, stats *Stats) (model.Place, bool) {
	if raw.UserRatingCount < cat.MinReviews {
		stats.Skipped.Add(1)
		return model.Place{}, false
	}
	if raw.ID == "" {
		zap.L().Debug("dropping record without id", zap.String("name", raw.DisplayName.Text))
		return model.Place{}, false
	}

	name := raw.DisplayName.Text
	if name == "" {
		name = placeholderName
	}

	mapsURL := raw.GoogleMapsURI
	if mapsURL == "" {
		mapsURL = "https://www.google.com/maps/place/?q=place_id:" + raw.ID
	}

	var photoURLs []string
	for _, photo := range raw.Photos {
		if len(photoURLs) == maxPhotoURLs {
			break
		}
		if url := s.provider.PhotoURL(photo.Name, s.cfg.PhotoMaxWidthPx); url != "" {
			photoURLs = append(photoURLs, url)
		}
	}

	status := raw.BusinessStatus
	if status == "" {
		status = "OPERATIONAL"
	}

	return model.Place{
		ID:             raw.ID,
		Name:           name,
		Address:        raw.Address,
		Lat:            raw.Location.Latitude,
		Lng:            raw.Location.Longitude,
		Rating:         raw.Rating,
		ReviewCount:    raw.UserRatingCount,
		MapsURL:        mapsURL,
		Website:        raw.WebsiteURI,
		Phone:          raw.Phone,
		PhotoURLs:      photoURLs,
		Trade:          category.Classify(name, raw.Types, cat),
		RawTypes:       raw.Types,
		Hours:          raw.OpeningHours.WeekdayDescriptions,
		BusinessStatus: status,
	}, true
}
