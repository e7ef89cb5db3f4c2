// Package content holds the site's static copy, demos and curated
// testimonials, loaded from an embedded YAML document.
package content

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed site.yaml
var siteYAML []byte

// Audio source modes.
const (
	AudioLocal    = "local"
	AudioExternal = "external"
	AudioFallback = "fallback"
)

// Site is the full page content.
type Site struct {
	Owner        Owner                `yaml:"owner"`
	Hero         Hero                 `yaml:"hero"`
	Consultation Consultation         `yaml:"consultation"`
	Demos        []VoiceDemo          `yaml:"demos"`
	UseCases     []UseCase            `yaml:"use_cases"`
	CaseStudies  []CaseStudy          `yaml:"case_studies"`
	Testimonials []CuratedTestimonial `yaml:"testimonials"`
}

type Owner struct {
	Name    string   `yaml:"name"`
	Tagline string   `yaml:"tagline"`
	Bio     []string `yaml:"bio"`
}

type Hero struct {
	Headline  string `yaml:"headline"`
	Highlight string `yaml:"highlight"`
	Lead      string `yaml:"lead"`
}

type Consultation struct {
	SlotsOpen  int      `yaml:"slots_open"`
	SlotsTotal int      `yaml:"slots_total"`
	Price      string   `yaml:"price"`
	Criteria   []string `yaml:"criteria"`
}

// VoiceDemo is a recorded call sample with a play control.
type VoiceDemo struct {
	ID       string      `yaml:"id"`
	Title    string      `yaml:"title"`
	Subtitle string      `yaml:"subtitle"`
	Quote    string      `yaml:"quote"`
	Audio    AudioSource `yaml:"audio"`
}

// AudioSource lists where a demo's audio can be loaded from.
type AudioSource struct {
	Local    string `yaml:"local"`
	External string `yaml:"external"`
	Fallback string `yaml:"fallback"`
}

// URL picks the audio URL for mode. Unknown modes and missing entries use the fallback.
func (a AudioSource) URL(mode string) string {
	switch {
	case mode == AudioLocal && a.Local != "":
		return a.Local
	case mode == AudioExternal && a.External != "":
		return a.External
	}
	return a.Fallback
}

type UseCase struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Video       string `yaml:"video"`
	Thumbnail   string `yaml:"thumbnail"`
	Duration    string `yaml:"duration"`
}

type CaseStudy struct {
	Category    string `yaml:"category"`
	SubCategory string `yaml:"sub_category"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
	LinkText    string `yaml:"link_text"`
	LinkHref    string `yaml:"link_href"`
	Label       string `yaml:"label"`
	AudioURL    string `yaml:"audio_url"`
}

// CuratedTestimonial is a hand-picked testimonial shown ahead of submitted ones.
type CuratedTestimonial struct {
	ID        string `yaml:"id"`
	Kind      string `yaml:"kind"` // quote, video, twitter, linkedin
	Author    string `yaml:"author"`
	Handle    string `yaml:"handle"`
	Role      string `yaml:"role"`
	Avatar    string `yaml:"avatar"`
	Content   string `yaml:"content"`
	VideoURL  string `yaml:"video_url"`
	Thumbnail string `yaml:"thumbnail"`
	Duration  string `yaml:"duration"`
	Date      string `yaml:"date"`
}

// Load parses the embedded site document.
func Load() (*Site, error) {
	return Parse(siteYAML)
}

// Parse decodes and validates a site document.
func Parse(data []byte) (*Site, error) {
	var s Site
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse site content: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks IDs are present and unique and every entry is renderable.
func (s *Site) Validate() error {
	var errs []error
	if s.Owner.Name == "" {
		errs = append(errs, errors.New("owner.name is required"))
	}
	seen := map[string]bool{}
	for i, d := range s.Demos {
		if d.ID == "" || seen["demo:"+d.ID] {
			errs = append(errs, fmt.Errorf("demos[%d]: missing or duplicate id %q", i, d.ID))
		}
		seen["demo:"+d.ID] = true
		if d.Audio.Fallback == "" {
			errs = append(errs, fmt.Errorf("demos[%d]: audio.fallback is required", i))
		}
	}
	for i, u := range s.UseCases {
		if u.ID == "" || seen["use:"+u.ID] {
			errs = append(errs, fmt.Errorf("use_cases[%d]: missing or duplicate id %q", i, u.ID))
		}
		seen["use:"+u.ID] = true
	}
	for i, t := range s.Testimonials {
		if t.ID == "" || seen["t:"+t.ID] {
			errs = append(errs, fmt.Errorf("testimonials[%d]: missing or duplicate id %q", i, t.ID))
		}
		seen["t:"+t.ID] = true
		switch t.Kind {
		case "video":
			if t.VideoURL == "" {
				errs = append(errs, fmt.Errorf("testimonials[%d]: video_url is required", i))
			}
		case "quote", "twitter", "linkedin":
			if t.Content == "" {
				errs = append(errs, fmt.Errorf("testimonials[%d]: content is required", i))
			}
		default:
			errs = append(errs, fmt.Errorf("testimonials[%d]: unknown kind %q", i, t.Kind))
		}
	}
	return errors.Join(errs...)
}
