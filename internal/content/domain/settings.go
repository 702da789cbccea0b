package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultHeroImage is shown when neither the settings nor the home page name a hero image.
const DefaultHeroImage = "/static/images/hero-bg.svg"

// Home page slugs consulted, in order, for a hero image when the settings have none.
var HomeSlugs = []string{"inicio", "home"}

// Settings is the single row of site-wide content edited from the back office.
type Settings struct {
	HeroTitle     string
	HeroSubtitle  string
	HeroImageURL  string
	HistoriaHTML  string
	VisitanosHTML string
	ScheduleJSON  string
	Address       string
	Phone         string
	Email         string
	MapEmbedURL   string
	FooterHTML    string
	UpdatedAt     time.Time
}

// ScheduleEntry is one line of the opening hours table.
type ScheduleEntry struct {
	Day   string
	Hours string
}

// Schedule decodes ScheduleJSON, a JSON object of day to hours such as {"Lunes": "12:00 - 22:00"},
// keeping the days in document order. Empty input yields no entries.
func (s *Settings) Schedule() ([]ScheduleEntry, error) {
	if s == nil || strings.TrimSpace(s.ScheduleJSON) == "" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(s.ScheduleJSON))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("schedule must be a JSON object")
	}
	var out []ScheduleEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		day, _ := keyTok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		out = append(out, ScheduleEntry{Day: day, Hours: scheduleValue(raw)})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func scheduleValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var v any
	if err := json.Unmarshal(raw, &v); err == nil && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

// ValidateSchedule reports whether ScheduleJSON is empty or a well-formed schedule object.
func (s *Settings) ValidateSchedule() error {
	_, err := s.Schedule()
	return err
}

// HeroImage picks the home hero image: the settings image, then the first home page's image,
// then DefaultHeroImage. Both arguments may be nil.
func HeroImage(s *Settings, home *Page) string {
	if s != nil && s.HeroImageURL != "" {
		return s.HeroImageURL
	}
	if home != nil && home.HeroImageURL != "" {
		return home.HeroImageURL
	}
	return DefaultHeroImage
}
