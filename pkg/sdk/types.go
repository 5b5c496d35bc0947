package matchcraft

import (
	"time"

	dommsg "github.com/kailas-cloud/matchcraft/internal/domain/message"
	domprofile "github.com/kailas-cloud/matchcraft/internal/domain/profile"
	"github.com/kailas-cloud/matchcraft/internal/domain/search/suggestion"
)

// Gender is the self-declared gender. Empty means unspecified.
type Gender string

// Gender constants.
const (
	GenderUnspecified Gender = ""
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderOther       Gender = "other"
)

// Horoscope holds the astrological attributes of a user.
type Horoscope struct {
	SunSign   string
	MoonSign  string
	Nakshatra string
	Ascendant string
	Manglik   bool
}

// ProfileInput carries the editable fields of a profile.
type ProfileInput struct {
	DisplayName string
	Profession  string
	Location    string
	Bio         string
	Age         int
	Gender      Gender
	Religion    string
	Hobbies     []string
	Movies      []string
	Music       []string
	Horoscope   *Horoscope
}

// Profile is a stored user profile.
type Profile struct {
	ID          string
	DisplayName string
	Profession  string
	Location    string
	Bio         string
	PhotoURL    string
	Age         int
	Gender      Gender
	Religion    string
	Hobbies     []string
	Movies      []string
	Music       []string
	Horoscope   *Horoscope
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListFilter narrows ProfileService.List. Zero values mean no constraint.
type ListFilter struct {
	Gender Gender
	MinAge int
	MaxAge int
}

// Suggestion is one autocomplete entry.
type Suggestion struct {
	ID          string
	DisplayName string
	PhotoURL    string
	Age         int
	Profession  string
	Location    string
}

// Message is a single direct message.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	RecipientID    string
	Text           string
	SentAt         time.Time
	ReadAt         time.Time // zero while unread
}

// Conversation is one inbox entry.
type Conversation struct {
	ID           string
	PeerID       string
	LastActivity time.Time
	Unread       int
	Last         *Message
}

func millis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func profileInputToDomain(in ProfileInput) domprofile.Input {
	out := domprofile.Input{
		DisplayName: in.DisplayName,
		Profession:  in.Profession,
		Location:    in.Location,
		Bio:         in.Bio,
		Age:         in.Age,
		Gender:      domprofile.Gender(in.Gender),
		Religion:    in.Religion,
		Hobbies:     in.Hobbies,
		Movies:      in.Movies,
		Music:       in.Music,
	}
	if h := in.Horoscope; h != nil {
		out.Horoscope = &domprofile.Horoscope{
			SunSign:   h.SunSign,
			MoonSign:  h.MoonSign,
			Nakshatra: h.Nakshatra,
			Ascendant: h.Ascendant,
			Manglik:   h.Manglik,
		}
	}
	return out
}

func profileFromDomain(r domprofile.Record) Profile {
	p := Profile{
		ID:          r.ID,
		DisplayName: r.DisplayName,
		Profession:  r.Profession,
		Location:    r.Location,
		Bio:         r.Bio,
		PhotoURL:    r.PhotoURL,
		Age:         r.Age,
		Gender:      Gender(r.Gender),
		Religion:    r.Religion,
		Hobbies:     r.Hobbies,
		Movies:      r.Movies,
		Music:       r.Music,
		CreatedAt:   millis(r.CreatedAt),
		UpdatedAt:   millis(r.UpdatedAt),
	}
	if h := r.Horoscope; h != nil {
		p.Horoscope = &Horoscope{
			SunSign:   h.SunSign,
			MoonSign:  h.MoonSign,
			Nakshatra: h.Nakshatra,
			Ascendant: h.Ascendant,
			Manglik:   h.Manglik,
		}
	}
	return p
}

func suggestionsFromDomain(items []suggestion.Suggestion) []Suggestion {
	out := make([]Suggestion, len(items))
	for i, s := range items {
		out[i] = Suggestion{
			ID:          s.ID,
			DisplayName: s.DisplayName,
			PhotoURL:    s.PhotoURL,
			Age:         s.Age,
			Profession:  s.Profession,
			Location:    s.Location,
		}
	}
	return out
}

func messageFromDomain(m dommsg.Message) Message {
	return Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		RecipientID:    m.RecipientID,
		Text:           m.Text,
		SentAt:         millis(m.SentAt),
		ReadAt:         millis(m.ReadAt),
	}
}

func conversationFromDomain(c dommsg.Conversation) Conversation {
	out := Conversation{
		ID:           c.ID,
		PeerID:       c.PeerID,
		LastActivity: millis(c.LastActivity),
		Unread:       c.Unread,
	}
	if c.Last != nil {
		last := messageFromDomain(*c.Last)
		out.Last = &last
	}
	return out
}
