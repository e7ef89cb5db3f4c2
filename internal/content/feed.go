package content

import (
	"github.com/lahiru-voiceai/site/internal/models"
)

// DefaultVideoThumbnail is shown for submitted video testimonials.
const DefaultVideoThumbnail = "https://images.unsplash.com/photo-1611162617474-5b21e879e113?w=800&h=600&fit=crop"

// FeedItem is one card in the testimonials wall.
type FeedItem = CuratedTestimonial

// Feed returns the curated testimonials followed by published submissions in
// the order given (newest first from the store).
func Feed(curated []CuratedTestimonial, published []models.Testimonial) []FeedItem {
	items := make([]FeedItem, 0, len(curated)+len(published))
	items = append(items, curated...)
	for _, t := range published {
		item := FeedItem{
			ID:     t.ID.String(),
			Author: t.FullName,
			Role:   t.Role,
			Date:   "New",
		}
		switch t.Kind {
		case models.TestimonialWritten:
			item.Kind = "quote"
			item.Content = t.Text()
		case models.TestimonialVideo:
			item.Kind = "video"
			item.VideoURL = t.Video()
			item.Thumbnail = DefaultVideoThumbnail
			item.Duration = "User Story"
		default:
			continue
		}
		if item.Author == "" {
			item.Author = "Anonymous"
		}
		items = append(items, item)
	}
	return items
}
