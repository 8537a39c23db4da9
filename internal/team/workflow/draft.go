package workflow

import "github.com/technovus/client-go/internal/validate"

// Candidate is one prospective teammate in a draft: the entered mobile with
// its current validation message. Verified candidates were picked from the
// user's other teams and bypass validation.
type Candidate struct {
	ID       int
	Mobile   string
	Verified bool
	Err      string
}

// Draft is the in-progress team form: a name plus an ordered list of
// candidates keyed by stable ids, so adding or removing entries never
// shifts another entry's identity.
type Draft struct {
	Name string

	candidates []Candidate
	nextID     int
}

// NewDraft creates an empty draft.
func NewDraft() *Draft {
	return &Draft{nextID: 1}
}

// Add appends a typed-in mobile and returns its stable id.
func (d *Draft) Add(mobile string) int {
	return d.add(mobile, false)
}

// AddVerified appends a pre-verified member selected from an existing team.
func (d *Draft) AddVerified(mobile string) int {
	return d.add(mobile, true)
}

func (d *Draft) add(mobile string, verified bool) int {
	id := d.nextID
	d.nextID++
	d.candidates = append(d.candidates, Candidate{ID: id, Mobile: mobile, Verified: verified})
	return id
}

// Edit replaces a candidate's mobile and clears its validation message.
// Returns the previous mobile and whether the id was found.
func (d *Draft) Edit(id int, mobile string) (string, bool) {
	for i := range d.candidates {
		if d.candidates[i].ID == id {
			previous := d.candidates[i].Mobile
			d.candidates[i].Mobile = mobile
			d.candidates[i].Err = ""
			return previous, true
		}
	}
	return "", false
}

// Remove deletes a candidate by id.
func (d *Draft) Remove(id int) bool {
	for i := range d.candidates {
		if d.candidates[i].ID == id {
			d.candidates = append(d.candidates[:i], d.candidates[i+1:]...)
			return true
		}
	}
	return false
}

// Candidates returns a copy of the candidate list in entry order.
func (d *Draft) Candidates() []Candidate {
	out := make([]Candidate, len(d.candidates))
	copy(out, d.candidates)
	return out
}

// Reset clears the form after a successful registration.
func (d *Draft) Reset() {
	d.Name = ""
	d.candidates = nil
}

func (d *Draft) setErr(id int, message string) {
	for i := range d.candidates {
		if d.candidates[i].ID == id {
			d.candidates[i].Err = message
			return
		}
	}
}

// distinctMobiles returns the set union of normalized candidate mobiles that
// currently carry no validation error. Duplicates across typed-in and
// selected-existing entries collapse to one invite.
func (d *Draft) distinctMobiles() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range d.candidates {
		if c.Err != "" {
			continue
		}
		normalized := validate.Normalize(c.Mobile)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		out = append(out, normalized)
	}
	return out
}

// ProspectiveSize is the team size if every current candidate joins,
// including the creator.
func (d *Draft) ProspectiveSize() int {
	return len(d.distinctMobiles()) + 1
}
