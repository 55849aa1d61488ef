package domain

const (
	ListingStatusActive   = "active"
	ListingStatusSold     = "sold"
	ListingStatusArchived = "archived"
)

const (
	ShareStatusPending  = "pending"
	ShareStatusCredited = "credited"
)

const (
	EventImpression   = "impression"
	EventRevealClick  = "reveal_click"
	EventContactClick = "contact_click"
)

const (
	ActionReveal  = "reveal"
	ActionContact = "contact"
)

const (
	ProspectStatusPending   = "pending"
	ProspectStatusContacted = "contacted"
	ProspectStatusRevealed  = "revealed"
	ProspectStatusConverted = "converted"
	ProspectStatusRejected  = "rejected"
)

// IsFunnelEvent reports whether t is a recordable funnel event type.
func IsFunnelEvent(t string) bool {
	switch t {
	case EventImpression, EventRevealClick, EventContactClick:
		return true
	}
	return false
}

// IsCTAEvent reports whether t counts towards a share's CTA clicks.
func IsCTAEvent(t string) bool {
	return t == EventRevealClick || t == EventContactClick
}
