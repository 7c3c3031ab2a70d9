package workflow

import (
	"time"

	"vintrek/pkg/model"
)

// DraftUpdate is a partial edit of the booking draft. Nil fields are left
// unchanged.
type DraftUpdate struct {
	TrailID         *string
	Campsite        *model.ResourceRef
	StartDate       *time.Time
	EndDate         *time.Time
	PartySize       *int
	SpecialRequests *string
	TermsAccepted   *bool
	Contact         *model.Contact
}

// Apply copies the set fields into the draft. The campsite is resolved by the
// caller and is not touched here.
func (u *DraftUpdate) Apply(d *model.BookingDraft) {
	if u == nil {
		return
	}
	if u.TrailID != nil {
		d.TrailID = *u.TrailID
	}
	if u.StartDate != nil {
		d.StartDate = *u.StartDate
	}
	if u.EndDate != nil {
		d.EndDate = *u.EndDate
	}
	if u.PartySize != nil {
		d.PartySize = *u.PartySize
	}
	if u.SpecialRequests != nil {
		d.SpecialRequests = *u.SpecialRequests
	}
	if u.TermsAccepted != nil {
		d.TermsAccepted = *u.TermsAccepted
	}
	if u.Contact != nil {
		c := *u.Contact
		d.Contact = &c
	}
}
