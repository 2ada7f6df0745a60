// Package family holds the elder's family members and emergency contacts.
package family

import (
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/emersion/go-vcard"
	"github.com/google/uuid"

	appLog "carecal/internal/log"
	"carecal/internal/model"
)

// DefaultRelation is used for imported cards without a category.
const DefaultRelation = "Family"

var ErrMissingField = errors.New("name, relation and phone are required")

// Roster is the in-memory family list.
type Roster struct {
	mu      sync.RWMutex
	members []model.Member
	ids     func() string
}

func NewRoster(seed ...model.Member) *Roster {
	r := &Roster{ids: uuid.NewString}
	r.members = append(r.members, seed...)
	return r
}

// Add registers a member. All fields are required.
func (r *Roster) Add(name, relation, phone string) (model.Member, error) {
	name = strings.TrimSpace(name)
	relation = strings.TrimSpace(relation)
	phone = strings.TrimSpace(phone)
	if name == "" || relation == "" || phone == "" {
		return model.Member{}, ErrMissingField
	}

	m := model.Member{ID: r.ids(), Name: name, Relation: relation, Phone: phone}
	r.mu.Lock()
	r.members = append(r.members, m)
	r.mu.Unlock()
	return m, nil
}

// Delete removes a member; unknown ids are ignored.
func (r *Roster) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.members[:0:0]
	for _, m := range r.members {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	r.members = kept
}

func (r *Roster) List() []model.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Member, len(r.members))
	copy(out, r.members)
	return out
}

// ImportVCard reads members from a vCard stream. Cards without a name or a
// phone number are skipped; malformed cards are logged and skipped.
func ImportVCard(r io.Reader) ([]model.Member, error) {
	dec := vcard.NewDecoder(r)
	var out []model.Member

	for {
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A broken header desynchronises the decoder, so stop here
			// and keep what was read.
			appLog.Warn("family: vcard decode stopped", "err", err, "imported", len(out))
			if len(out) == 0 {
				return nil, err
			}
			break
		}

		name := card.PreferredValue(vcard.FieldFormattedName)
		if name == "" {
			if n := card.Name(); n != nil {
				name = strings.TrimSpace(strings.Join([]string{n.GivenName, n.FamilyName}, " "))
			}
		}
		phone := card.PreferredValue(vcard.FieldTelephone)
		if name == "" || phone == "" {
			appLog.Debug("family: card skipped", "has_name", name != "", "has_phone", phone != "")
			continue
		}

		relation := DefaultRelation
		if cats := card.Categories(); len(cats) > 0 && strings.TrimSpace(cats[0]) != "" {
			relation = strings.TrimSpace(cats[0])
		}

		out = append(out, model.Member{
			ID:       uuid.NewString(),
			Name:     name,
			Relation: relation,
			Phone:    phone,
		})
	}
	return out, nil
}
