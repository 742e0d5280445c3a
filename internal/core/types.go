package core

import (
	"encoding/json"
	"time"
)

// MaxImportBatch is the largest number of drafts accepted by a single import call.
const MaxImportBatch = 100

// EntityKind identifies a family of owner-scoped named reference entities.
type EntityKind string

const (
	KindTag          EntityKind = "tag"
	KindMeetingPlace EntityKind = "meeting_place"
)

// Label returns a human-readable name for the kind, used in error messages.
func (k EntityKind) Label() string {
	switch k {
	case KindTag:
		return "tag"
	case KindMeetingPlace:
		return "meeting place"
	default:
		return string(k)
	}
}

// NamedEntity is a tag or a meeting place. (OwnerID, lower(Name)) is unique per kind.
type NamedEntity struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Link is a way of reaching a contact (phone number, messenger handle, ...).
type Link struct {
	Type  string  `json:"type"`
	Label *string `json:"label,omitempty"`
	Value string  `json:"value"`
}

// ContactLinkTypes lists the link types that count as "has contact" when filtering.
var ContactLinkTypes = []string{"phone", "telegram", "instagram"}

// Gender values accepted by filters.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// ContactFields holds the optional descriptive fields shared by every contact shape.
type ContactFields struct {
	Gender            *string    `json:"gender"`
	Age               *int       `json:"age"`
	AgeType           *string    `json:"ageType"`
	BirthDate         *time.Time `json:"birthDate"`
	Height            *float64   `json:"height"`
	HeightType        *string    `json:"heightType"`
	Occupation        *string    `json:"occupation"`
	OccupationDetails *string    `json:"occupationDetails"`
	Residence         *string    `json:"residence"`
	ResidenceDetails  *string    `json:"residenceDetails"`
	WhereMet          *string    `json:"whereMet"`
	HowMet            *string    `json:"howMet"`
	Details           *string    `json:"details"`
}

// ContactInput is the fully resolved write model handed to storage.
type ContactInput struct {
	Name string
	ContactFields
	CustomFields   map[string]string
	MetAt          time.Time
	TagIDs         []string
	MeetingPlaceID *string
	Links          []Link
}

// ContactPatch describes a partial update. Nil members are left untouched.
// An empty MeetingPlaceID clears the meeting place; TagIDs and Links replace
// the existing sets wholesale.
type ContactPatch struct {
	Name *string
	ContactFields
	CustomFields   map[string]string
	MetAt          *time.Time
	TagIDs         *[]string
	MeetingPlaceID *string
	Links          *[]Link
}

// Contact is a persisted contact together with its resolved references.
type Contact struct {
	ID      string `json:"id"`
	OwnerID string `json:"userId"`
	Name    string `json:"name"`
	ContactFields
	Photo          *string           `json:"photo"`
	CustomFields   map[string]string `json:"customFields,omitempty"`
	MetAt          time.Time         `json:"metAt"`
	MeetingPlaceID *string           `json:"meetingPlaceId"`
	MeetingPlace   *NamedEntity      `json:"meetingPlace"`
	Tags           []NamedEntity     `json:"tags"`
	Links          []Link            `json:"links"`
	Notes          []Note            `json:"notes,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// TagIDs returns the ids of the contact's tags.
func (c Contact) TagIDs() []string {
	ids := make([]string, len(c.Tags))
	for i, t := range c.Tags {
		ids[i] = t.ID
	}
	return ids
}

// Note is a titled free-text entry attached to a contact.
type Note struct {
	ID          string    `json:"id"`
	ContactID   string    `json:"contactId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ContactList is the result of a filtered listing. Total is len(Contacts).
type ContactList struct {
	Contacts []Contact `json:"contacts"`
	Total    int       `json:"total"`
}

// ImportResult aggregates the outcome of one import call. It is never persisted.
type ImportResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// Stats summarises an owner's data.
type Stats struct {
	TotalContacts      int64 `json:"totalContacts"`
	TotalTags          int64 `json:"totalTags"`
	TotalMeetingPlaces int64 `json:"totalMeetingPlaces"`
	TotalNotes         int64 `json:"totalNotes"`
	RecentContacts     int64 `json:"recentContacts"`
}

// ContactDraft is one untrusted item of an import batch.
//
// Decoding never fails: a malformed item or a non-string name is remembered
// and reported by ValidateItem, so one bad item cannot abort the whole batch.
type ContactDraft struct {
	Name              string   `json:"-"`
	Gender            *string  `json:"gender,omitempty"`
	Age               *int     `json:"age,omitempty"`
	AgeType           *string  `json:"ageType,omitempty"`
	BirthDate         *string  `json:"birthDate,omitempty"`
	Height            *float64 `json:"height,omitempty"`
	HeightType        *string  `json:"heightType,omitempty"`
	Occupation        *string  `json:"occupation,omitempty"`
	OccupationDetails *string  `json:"occupationDetails,omitempty"`
	Residence         *string  `json:"residence,omitempty"`
	ResidenceDetails  *string  `json:"residenceDetails,omitempty"`
	WhereMet          *string  `json:"whereMet,omitempty"`
	HowMet            *string  `json:"howMet,omitempty"`
	Details           *string  `json:"details,omitempty"`
	MetAt             *string  `json:"metAt,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	MeetingPlace      *string  `json:"meetingPlace,omitempty"`
	Links             []Link   `json:"links,omitempty"`

	nameNotString bool
	decodeErr     error
}

// UnmarshalJSON implements lenient decoding; see ContactDraft.
func (d *ContactDraft) UnmarshalJSON(data []byte) error {
	*d = ContactDraft{}

	var probe struct {
		Name json.RawMessage `json:"name"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		d.decodeErr = err
		return nil
	}

	var (
		name          string
		nameNotString bool
	)
	if len(probe.Name) > 0 && string(probe.Name) != "null" {
		if err := json.Unmarshal(probe.Name, &name); err != nil {
			nameNotString = true
		}
	}

	type plain ContactDraft
	var fields plain
	if err := json.Unmarshal(data, &fields); err != nil {
		d.decodeErr = err
	} else {
		*d = ContactDraft(fields)
	}
	d.Name = name
	d.nameNotString = nameNotString
	return nil
}

// MarshalJSON includes the name, which is hidden from the default encoder so
// that UnmarshalJSON can inspect its raw type.
func (d ContactDraft) MarshalJSON() ([]byte, error) {
	type plain ContactDraft
	return json.Marshal(struct {
		Name string `json:"name"`
		plain
	}{Name: d.Name, plain: plain(d)})
}
