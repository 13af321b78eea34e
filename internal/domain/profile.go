package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProfileKind is the stored chat type: a single companion or a group of them.
type ProfileKind string

const (
	ProfileIndividual ProfileKind = "individual"
	ProfileGroup      ProfileKind = "group"
)

// Profile is a persisted companion record. Individual profiles embed the
// persona fields directly; group profiles carry the member personas.
type Profile struct {
	ID          uuid.UUID
	Kind        ProfileKind
	Name        string
	Age         int
	Gender      string
	Nationality string
	Traits      []string
	Theme       string
	IsNew       bool
	Members     []Persona
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Persona converts an individual profile into the per-request persona value.
func (p *Profile) Persona() Persona {
	return Persona{
		Name:        p.Name,
		Age:         p.Age,
		Gender:      p.Gender,
		Nationality: p.Nationality,
		Traits:      p.Traits,
	}
}

// StoredMessage is one persisted transcript entry for a profile.
type StoredMessage struct {
	ID         int64
	ProfileID  uuid.UUID
	Role       Role
	Text       string
	SenderName string
	CreatedAt  time.Time
}

// Turn converts a stored message back into the transcript shape the
// generation core consumes.
func (m *StoredMessage) Turn() Turn {
	return Turn{
		Role: m.Role,
		Content: TurnContent{
			Type:       "text",
			Text:       m.Text,
			SenderName: m.SenderName,
		},
	}
}
