// Package content holds the portfolio's static records and the card views
// rendered from them.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed portfolio.yaml
var portfolioYAML []byte

// ErrNotFound is returned when a record or action does not exist.
var ErrNotFound = errors.New("content: not found")

// Education is the about-section degree block.
type Education struct {
	Degree      string `yaml:"degree"`
	Institution string `yaml:"institution"`
	Period      string `yaml:"period"`
	GPA         string `yaml:"gpa"`
}

// Profile is the page owner's identity and contact links.
type Profile struct {
	Name      string    `yaml:"name"`
	Headline  string    `yaml:"headline"`
	Summary   string    `yaml:"summary"`
	About     string    `yaml:"about"`
	Email     string    `yaml:"email"`
	GitHub    string    `yaml:"github"`
	LinkedIn  string    `yaml:"linkedin"`
	Resume    string    `yaml:"resume"`
	Education Education `yaml:"education"`
	Traits    []string  `yaml:"traits"`
	Skills    []string  `yaml:"skills"`
}

// ComposeURL is the web mail composer link for the profile email.
func (p Profile) ComposeURL() string {
	if strings.TrimSpace(p.Email) == "" {
		return ""
	}
	return "https://mail.google.com/mail/?view=cm&fs=1&to=" + p.Email
}

// MailtoURL is the mailto link for the profile email.
func (p Profile) MailtoURL() string {
	if strings.TrimSpace(p.Email) == "" {
		return ""
	}
	return "mailto:" + p.Email
}

type Project struct {
	Slug         string   `yaml:"slug"`
	Title        string   `yaml:"title"`
	Description  string   `yaml:"description"`
	Technologies []string `yaml:"technologies"`
	Featured     bool     `yaml:"featured"`
	GitHub       string   `yaml:"github"`
	LiveDemo     string   `yaml:"live_demo"`
}

type Experience struct {
	Slug         string   `yaml:"slug"`
	Role         string   `yaml:"role"`
	Company      string   `yaml:"company"`
	Period       string   `yaml:"period"`
	Current      bool     `yaml:"current"`
	Description  string   `yaml:"description"`
	Achievements []string `yaml:"achievements"`
	Skills       []string `yaml:"skills"`
}

type Certification struct {
	Slug           string `yaml:"slug"`
	Title          string `yaml:"title"`
	Issuer         string `yaml:"issuer"`
	Date           string `yaml:"date"`
	Type           string `yaml:"type"`
	CredentialID   string `yaml:"credential_id"`
	CertificateURL string `yaml:"certificate_url"`
}

type Publication struct {
	Slug           string   `yaml:"slug"`
	Title          string   `yaml:"title"`
	Journal        string   `yaml:"journal"`
	Publisher      string   `yaml:"publisher"`
	Date           string   `yaml:"date"`
	Status         string   `yaml:"status"`
	DOI            string   `yaml:"doi"`
	DOIURL         string   `yaml:"doi_url"`
	PublicationURL string   `yaml:"publication_url"`
	Description    string   `yaml:"description"`
	Keywords       []string `yaml:"keywords"`
}

// Published reports whether the paper is out rather than accepted.
func (p Publication) Published() bool { return p.Status == "Published" }

type SocialImpact struct {
	Slug           string   `yaml:"slug"`
	Role           string   `yaml:"role"`
	Organization   string   `yaml:"organization"`
	Location       string   `yaml:"location"`
	Period         string   `yaml:"period"`
	Description    string   `yaml:"description"`
	Achievements   []string `yaml:"achievements"`
	Skills         []string `yaml:"skills"`
	Certificate    bool     `yaml:"certificate"`
	CertificateURL string   `yaml:"certificate_url"`
}

// Catalog is every record shown on the page.
type Catalog struct {
	Profile        Profile         `yaml:"profile"`
	Projects       []Project       `yaml:"projects"`
	Experiences    []Experience    `yaml:"experiences"`
	Certifications []Certification `yaml:"certifications"`
	Publications   []Publication   `yaml:"publications"`
	SocialImpact   []SocialImpact  `yaml:"social_impact"`
}

// Load parses the embedded portfolio document.
func Load() (*Catalog, error) {
	return Parse(portfolioYAML)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	seen := map[string]bool{}
	check := func(kind Kind, slug string) error {
		if strings.TrimSpace(slug) == "" {
			return fmt.Errorf("validate catalog: %s record without slug", kind)
		}
		key := string(kind) + "/" + slug
		if seen[key] {
			return fmt.Errorf("validate catalog: duplicate %s", key)
		}
		seen[key] = true
		return nil
	}
	for _, p := range c.Projects {
		if err := check(KindProject, p.Slug); err != nil {
			return err
		}
	}
	for _, e := range c.Experiences {
		if err := check(KindExperience, e.Slug); err != nil {
			return err
		}
	}
	for _, cert := range c.Certifications {
		if err := check(KindCertification, cert.Slug); err != nil {
			return err
		}
	}
	for _, p := range c.Publications {
		if err := check(KindPublication, p.Slug); err != nil {
			return err
		}
	}
	for _, s := range c.SocialImpact {
		if err := check(KindSocialImpact, s.Slug); err != nil {
			return err
		}
	}
	return nil
}
