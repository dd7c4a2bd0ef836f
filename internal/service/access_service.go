package service

import (
	"context"

	"github.com/fieldops/field-console/internal/access"
)

// Profile is what the console needs to render its shell for a principal.
type Profile struct {
	Principal      access.Principal
	Sections       []access.Section
	ExplicitGrants []string
	// GrantsUnavailable is set when explicit grants could not be listed.
	GrantsUnavailable bool
}

// AccessService answers "who am I and what may I see".
type AccessService struct {
	aggregator *access.Aggregator
	sections   []access.Section
}

// NewAccessService constructs the service. A nil section registry uses
// access.DefaultSections.
func NewAccessService(aggregator *access.Aggregator, sections []access.Section) *AccessService {
	if sections == nil {
		sections = access.DefaultSections
	}
	return &AccessService{aggregator: aggregator, sections: sections}
}

// Profile builds the profile of an already resolved principal.
func (s *AccessService) Profile(ctx context.Context, p access.Principal) Profile {
	profile := Profile{
		Principal:      p,
		Sections:       access.VisibleSections(p, s.sections),
		ExplicitGrants: []string{},
	}
	if !p.Authenticated() {
		return profile
	}
	grants, err := s.aggregator.ExplicitGrants(ctx, p)
	if err != nil {
		profile.GrantsUnavailable = true
		return profile
	}
	profile.ExplicitGrants = grants
	return profile
}
