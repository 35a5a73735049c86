package model

import (
	"encoding/json"
	"time"

	"catapi/internal/geo"
)

// Cat is a registered cat. Owner is only set when the owning user has been
// attached for a response.
type Cat struct {
	ID        string
	CatName   string
	Weight    float64
	Filename  string
	Birthdate time.Time
	Location  *geo.Location
	OwnerID   string
	Owner     *User
}

type catJSON struct {
	ID        string        `json:"_id"`
	CatName   string        `json:"cat_name"`
	Weight    float64       `json:"weight"`
	Filename  string        `json:"filename"`
	Birthdate time.Time     `json:"birthdate"`
	Location  *geo.Location `json:"location,omitempty"`
	Owner     any           `json:"owner"`
}

// MarshalJSON emits owner as the user projection when attached, else as the
// owner id.
func (c Cat) MarshalJSON() ([]byte, error) {
	out := catJSON{
		ID:        c.ID,
		CatName:   c.CatName,
		Weight:    c.Weight,
		Filename:  c.Filename,
		Birthdate: c.Birthdate,
		Location:  c.Location,
		Owner:     c.OwnerID,
	}
	if c.Owner != nil {
		out.Owner = c.Owner.Output()
	}
	return json.Marshal(out)
}

// CatPatch is a partial update. Nil fields are left untouched.
type CatPatch struct {
	CatName   *string
	Weight    *float64
	Filename  *string
	Birthdate *time.Time
	Location  *geo.Location
	OwnerID   *string
}

// Empty reports whether the patch changes nothing.
func (p CatPatch) Empty() bool {
	return p.CatName == nil && p.Weight == nil && p.Filename == nil &&
		p.Birthdate == nil && p.Location == nil && p.OwnerID == nil
}

// Apply writes the patch onto c.
func (p CatPatch) Apply(c *Cat) {
	if p.CatName != nil {
		c.CatName = *p.CatName
	}
	if p.Weight != nil {
		c.Weight = *p.Weight
	}
	if p.Filename != nil {
		c.Filename = *p.Filename
	}
	if p.Birthdate != nil {
		c.Birthdate = *p.Birthdate
	}
	if p.Location != nil {
		loc := *p.Location
		c.Location = &loc
	}
	if p.OwnerID != nil {
		c.OwnerID = *p.OwnerID
	}
}
