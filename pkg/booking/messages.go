package booking

import (
	"strconv"
	"strings"
)

// Language is a caller language tag such as "en" or "de".
type Language string

// Supported languages.
const (
	English Language = "en"
	German  Language = "de"
)

// DefaultLanguage is used when the caller's language is unknown.
const DefaultLanguage = English

// ParseLanguage lower-cases a tag and keeps only the primary subtag,
// so "DE", "de-DE" and "de_AT" all become "de". Empty input yields DefaultLanguage.
func ParseLanguage(s string) Language {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	if s == "" {
		return DefaultLanguage
	}
	return Language(s)
}

// MessageKind names one caller-facing sentence.
type MessageKind string

const (
	MsgSuccess       MessageKind = "success"
	MsgNote          MessageKind = "note"
	MsgPersistFailed MessageKind = "persist_failed"
	MsgParseFailed   MessageKind = "parse_failed"
	MsgUnexpected    MessageKind = "unexpected"
	MsgClosing       MessageKind = "closing"
	MsgNotBooked     MessageKind = "not_booked"
)

// Catalog maps a language and message kind to a template.
// Templates use {name}, {date}, {time}, {guests}, {id} and {requests} placeholders.
type Catalog map[Language]map[MessageKind]string

// DefaultCatalog holds the English and German sentences.
var DefaultCatalog = Catalog{
	English: {
		MsgSuccess:       "Perfect! Your reservation is confirmed for {name} on {date} at {time} for {guests} guests. Your reservation ID is {id}. We look forward to seeing you!",
		MsgNote:          " Note: {requests}",
		MsgPersistFailed: "I'm sorry, there was a technical issue saving your reservation. Please call us directly at our phone number to book.",
		MsgParseFailed:   "I had trouble understanding the date or time format. Could you please provide the date (like October 15th or 10/15) and time (like 7 PM or 19:00)?",
		MsgUnexpected:    "I encountered an error while making the reservation. Please try again or call us directly.",
		MsgClosing:       "Thank you for calling! We look forward to seeing you. Goodbye!",
		MsgNotBooked:     "Before we say goodbye, let's finish your reservation. Could you confirm the date, time and number of guests for me?",
	},
	German: {
		MsgSuccess:       "Perfekt! Deine Reservierung ist bestätigt für {name} am {date} um {time} Uhr für {guests} Personen. Deine Reservierungs-ID ist {id}. Wir freuen uns auf dich!",
		MsgNote:          " Hinweis: {requests}",
		MsgPersistFailed: "Entschuldigung, es gab ein technisches Problem beim Speichern deiner Reservierung. Bitte rufe uns direkt an unter unserer Telefonnummer.",
		MsgParseFailed:   "Ich hatte Schwierigkeiten, das Datums- oder Zeitformat zu verstehen. Bitte gib das Datum (wie 15. Oktober oder 10/15) und die Uhrzeit (wie 19 Uhr oder 19:00) an.",
		MsgUnexpected:    "Ich bin auf einen Fehler bei der Reservierung gestoßen. Bitte versuche es erneut oder rufe uns an.",
		MsgClosing:       "Danke für deinen Anruf! Wir freuen uns auf dich. Auf Wiedersehen!",
		MsgNotBooked:     "Bevor wir uns verabschieden, lass uns deine Reservierung abschließen. Kannst du mir Datum, Uhrzeit und Personenzahl bestätigen?",
	},
}

// Vars are the values substituted into a template.
type Vars struct {
	Name     string
	Date     string
	Time     string
	Guests   int
	ID       string
	Requests string
}

// Template returns the raw template for lang and kind, falling back to
// DefaultLanguage when the language or the kind is missing.
func (c Catalog) Template(lang Language, kind MessageKind) string {
	if msgs, ok := c[lang]; ok {
		if t, ok := msgs[kind]; ok {
			return t
		}
	}
	if msgs, ok := c[DefaultLanguage]; ok {
		return msgs[kind]
	}
	return ""
}

// Render fills the template for lang and kind with v.
func (c Catalog) Render(lang Language, kind MessageKind, v Vars) string {
	r := strings.NewReplacer(
		"{name}", v.Name,
		"{date}", v.Date,
		"{time}", v.Time,
		"{guests}", strconv.Itoa(v.Guests),
		"{id}", v.ID,
		"{requests}", v.Requests,
	)
	return r.Replace(c.Template(lang, kind))
}

// Supports reports whether the catalog has any sentences for lang.
func (c Catalog) Supports(lang Language) bool {
	_, ok := c[lang]
	return ok
}
