package service

import (
	"strings"

	"lovegift/internal/domain"
)

// Lead is the contact data a prospect types into the listing form.
type Lead struct {
	Name      string
	Mobile    string
	Email     string
	Consented bool
}

func (l Lead) normalized() Lead {
	return Lead{
		Name:      strings.TrimSpace(l.Name),
		Mobile:    strings.TrimSpace(l.Mobile),
		Email:     strings.TrimSpace(l.Email),
		Consented: l.Consented,
	}
}

// ProspectAction is either a RevealAction or a ContactAction. Each variant
// owns its required fields and the acknowledgment it returns.
type ProspectAction interface {
	ActionType() string
	LeadDetails() Lead
	Validate() error
	acknowledgment() string
}

// RevealAction asks for the hidden discounted price. Only a name is required.
type RevealAction struct {
	Lead Lead
}

func (a RevealAction) ActionType() string { return domain.ActionReveal }
func (a RevealAction) LeadDetails() Lead  { return a.Lead.normalized() }
func (a RevealAction) acknowledgment() string {
	return ""
}

func (a RevealAction) Validate() error {
	if a.LeadDetails().Name == "" {
		return domain.Invalid("prospect_name", "is required")
	}
	return nil
}

// ContactAction asks the seller to get in touch. A name, a mobile number and
// consent to be contacted are required.
type ContactAction struct {
	Lead Lead
}

func (a ContactAction) ActionType() string { return domain.ActionContact }
func (a ContactAction) LeadDetails() Lead  { return a.Lead.normalized() }
func (a ContactAction) acknowledgment() string {
	return "Your details have been sent to the seller."
}

func (a ContactAction) Validate() error {
	l := a.LeadDetails()
	switch {
	case l.Name == "":
		return domain.Invalid("prospect_name", "is required")
	case l.Mobile == "":
		return domain.Invalid("prospect_mobile", "is required to contact the seller")
	case !l.Consented:
		return domain.Invalid("consented", "consent is required to contact the seller")
	}
	return nil
}

// NewProspectAction builds the variant named by actionType.
func NewProspectAction(actionType string, lead Lead) (ProspectAction, error) {
	switch strings.ToLower(strings.TrimSpace(actionType)) {
	case domain.ActionReveal:
		return RevealAction{Lead: lead}, nil
	case domain.ActionContact:
		return ContactAction{Lead: lead}, nil
	default:
		return nil, domain.Invalid("action_type", "must be reveal or contact")
	}
}
