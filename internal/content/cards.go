package content

import (
	"fmt"
	"strings"
)

// Kind names a record family in outbound routes.
type Kind string

const (
	KindProfile       Kind = "profile"
	KindProject       Kind = "project"
	KindExperience    Kind = "experience"
	KindCertification Kind = "certification"
	KindPublication   Kind = "publication"
	KindSocialImpact  Kind = "social-impact"
)

// Action is an outbound link button on a card. An action without a URL is
// rendered disabled and cannot be followed.
type Action struct {
	Name  string
	Label string
	URL   string
}

// Enabled reports whether the link target is present.
func (a Action) Enabled() bool { return strings.TrimSpace(a.URL) != "" }

// Card is the view of one record.
type Card struct {
	Kind    Kind
	Slug    string
	Actions []Action
}

// Href is the link for an action: site paths as they are, outbound URLs
// through the tracked redirect. It is empty when the action is disabled.
func (c Card) Href(a Action) string {
	if !a.Enabled() {
		return ""
	}
	if strings.HasPrefix(a.URL, "/") {
		return a.URL
	}
	return fmt.Sprintf("/go/%s/%s/%s", c.Kind, c.Slug, a.Name)
}

// ProjectCard exposes the code and live demo links.
func ProjectCard(p Project) Card {
	return Card{Kind: KindProject, Slug: p.Slug, Actions: []Action{
		{Name: "code", Label: "Code", URL: p.GitHub},
		{Name: "demo", Label: "Live Demo", URL: p.LiveDemo},
	}}
}

// CertificationCard exposes the certificate, or a pending placeholder.
func CertificationCard(c Certification) Card {
	label := "View Certificate"
	if strings.TrimSpace(c.CertificateURL) == "" {
		label = "Certificate Pending"
	}
	return Card{Kind: KindCertification, Slug: c.Slug, Actions: []Action{
		{Name: "certificate", Label: label, URL: c.CertificateURL},
	}}
}

// PublicationCard exposes the paper and its DOI.
func PublicationCard(p Publication) Card {
	return Card{Kind: KindPublication, Slug: p.Slug, Actions: []Action{
		{Name: "paper", Label: "View Paper", URL: p.PublicationURL},
		{Name: "doi", Label: p.DOI, URL: p.DOIURL},
	}}
}

// SocialImpactCard exposes the volunteering certificate when one was issued.
func SocialImpactCard(s SocialImpact) Card {
	url := ""
	if s.Certificate {
		url = s.CertificateURL
	}
	return Card{Kind: KindSocialImpact, Slug: s.Slug, Actions: []Action{
		{Name: "certificate", Label: "View Certificate", URL: url},
	}}
}

// ExperienceCard has no outbound links.
func ExperienceCard(e Experience) Card {
	return Card{Kind: KindExperience, Slug: e.Slug}
}

// ResumePath is the site route serving the resume download.
const ResumePath = "/resume"

// ProfileCard holds the contact links shown in the hero and footer. The
// resume action is enabled only when the file is available to serve.
func ProfileCard(p Profile, resumeAvailable bool) Card {
	resume := ""
	if resumeAvailable && strings.TrimSpace(p.Resume) != "" {
		resume = ResumePath
	}
	return Card{Kind: KindProfile, Slug: "me", Actions: []Action{
		{Name: "resume", Label: "Download Resume", URL: resume},
		{Name: "compose", Label: p.Email, URL: p.ComposeURL()},
		{Name: "email", Label: "Email", URL: p.MailtoURL()},
		{Name: "github", Label: "GitHub", URL: p.GitHub},
		{Name: "linkedin", Label: "LinkedIn", URL: p.LinkedIn},
	}}
}

// Action looks up a card action by its route key.
func (c Card) Action(name string) (Action, bool) {
	for _, a := range c.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// Cards returns every card of kind in page order.
func (c *Catalog) Cards(kind Kind) []Card {
	var cards []Card
	switch kind {
	case KindProfile:
		// The resume is served by its own route, never through a redirect.
		cards = append(cards, ProfileCard(c.Profile, false))
	case KindProject:
		for _, p := range c.Projects {
			cards = append(cards, ProjectCard(p))
		}
	case KindExperience:
		for _, e := range c.Experiences {
			cards = append(cards, ExperienceCard(e))
		}
	case KindCertification:
		for _, cert := range c.Certifications {
			cards = append(cards, CertificationCard(cert))
		}
	case KindPublication:
		for _, p := range c.Publications {
			cards = append(cards, PublicationCard(p))
		}
	case KindSocialImpact:
		for _, s := range c.SocialImpact {
			cards = append(cards, SocialImpactCard(s))
		}
	}
	return cards
}

// Action resolves the enabled action name on record slug of kind.
// Unknown records, unknown actions and disabled actions are ErrNotFound.
func (c *Catalog) Action(kind Kind, slug, name string) (Action, error) {
	for _, card := range c.Cards(kind) {
		if card.Slug != slug {
			continue
		}
		a, ok := card.Action(name)
		if !ok || !a.Enabled() {
			break
		}
		return a, nil
	}
	return Action{}, fmt.Errorf("%s/%s/%s: %w", kind, slug, name, ErrNotFound)
}
