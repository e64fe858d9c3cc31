package web

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/KavishaShah6/portfolio/internal/content"
	"github.com/KavishaShah6/portfolio/internal/loader"
	"github.com/KavishaShah6/portfolio/internal/sections"
	"github.com/KavishaShah6/portfolio/internal/store"
)

type cardAction struct {
	Label   string
	Href    string
	Enabled bool
}

func actionsFor(card content.Card) []cardAction {
	out := make([]cardAction, 0, len(card.Actions))
	for _, a := range card.Actions {
		out = append(out, cardAction{Label: a.Label, Href: card.Href(a), Enabled: a.Enabled()})
	}
	return out
}

type projectView struct {
	content.Project
	Index   int
	Actions []cardAction
}

type experienceView struct {
	content.Experience
	Index int
}

type certificationView struct {
	content.Certification
	Index   int
	Actions []cardAction
}

type publicationView struct {
	content.Publication
	Index   int
	Actions []cardAction
}

type socialImpactView struct {
	content.SocialImpact
	Index   int
	Actions []cardAction
}

type navItem struct {
	ID     string
	Label  string
	Active bool
}

type loaderRow struct {
	ID     int
	Name   string
	Label  string
	Status string
}

type pageData struct {
	Profile        content.Profile
	Contact        map[string]cardAction
	Nav            []navItem
	Projects       []projectView
	Experiences    []experienceView
	Certifications []certificationView
	Publications   []publicationView
	SocialImpact   []socialImpactView
	Loader         []loaderRow
	LoaderTotalMS  int64
	Phrases        []string
}

func navFor(active sections.Section) []navItem {
	items := make([]navItem, 0, len(sections.All()))
	for _, s := range sections.All() {
		items = append(items, navItem{ID: string(s), Label: s.Label(), Active: s == active})
	}
	return items
}

func (s *Server) pageData(active sections.Section) pageData {
	c := s.catalog
	d := pageData{
		Profile:       c.Profile,
		Contact:       map[string]cardAction{},
		Nav:           navFor(active),
		LoaderTotalMS: s.sequence.Total().Milliseconds(),
		Phrases:       s.cycler.Phrases(),
	}

	profile := content.ProfileCard(c.Profile, s.resumeAvailable())
	for _, a := range profile.Actions {
		d.Contact[a.Name] = cardAction{Label: a.Label, Href: profile.Href(a), Enabled: a.Enabled()}
	}

	for i, p := range c.Projects {
		d.Projects = append(d.Projects, projectView{Project: p, Index: i, Actions: actionsFor(content.ProjectCard(p))})
	}
	for i, e := range c.Experiences {
		d.Experiences = append(d.Experiences, experienceView{Experience: e, Index: i})
	}
	for i, cert := range c.Certifications {
		d.Certifications = append(d.Certifications, certificationView{Certification: cert, Index: i, Actions: actionsFor(content.CertificationCard(cert))})
	}
	for i, p := range c.Publications {
		d.Publications = append(d.Publications, publicationView{Publication: p, Index: i, Actions: actionsFor(content.PublicationCard(p))})
	}
	for i, si := range c.SocialImpact {
		d.SocialImpact = append(d.SocialImpact, socialImpactView{SocialImpact: si, Index: i, Actions: actionsFor(content.SocialImpactCard(si))})
	}

	st := s.sequence.Start()
	for i, step := range s.sequence.Steps() {
		d.Loader = append(d.Loader, loaderRow{
			ID:     step.ID,
			Name:   step.Name,
			Label:  s.sequence.Label(st, i),
			Status: string(st.StatusOf(i)),
		})
	}
	return d
}

func (s *Server) index(c *gin.Context) {
	s.metrics.PageView("home")
	c.HTML(http.StatusOK, "index.html", s.pageData(sections.Home))
}

// sectionFragment renders one section for htmx swaps.
func (s *Server) sectionFragment(c *gin.Context) {
	sec, ok := sections.Parse(c.Param("id"))
	if !ok {
		c.String(http.StatusNotFound, "unknown section")
		return
	}
	s.metrics.PageView(string(sec))
	c.HTML(http.StatusOK, "section-"+string(sec), s.pageData(sec))
}

// nav re-renders the navigation for the scroll position the client reports.
func (s *Server) nav(c *gin.Context) {
	previous, _ := sections.Parse(c.PostForm("current"))
	if previous == "" {
		previous = sections.Home
	}

	layout := sections.Layout{}
	for _, sec := range sections.All() {
		top, errTop := strconv.ParseFloat(c.PostForm("top_"+string(sec)), 64)
		height, errHeight := strconv.ParseFloat(c.PostForm("height_"+string(sec)), 64)
		if errTop != nil || errHeight != nil {
			continue
		}
		layout[sec] = sections.Bounds{Top: top, Height: height}
	}
	scrollY, err := strconv.ParseFloat(c.PostForm("scroll_y"), 64)
	if err != nil {
		scrollY = 0
	}

	tracker := sections.Resume(previous)
	unsubscribe := tracker.Subscribe(func(next sections.Section) {
		s.metrics.SectionChanged(string(next))
	})
	defer unsubscribe()

	active := tracker.Observe(scrollY, layout)
	c.HTML(http.StatusOK, "nav", gin.H{"Nav": navFor(active), "Active": string(active)})
}

// outbound follows an enabled card action after recording the click.
func (s *Server) outbound(c *gin.Context) {
	kind := content.Kind(c.Param("kind"))
	slug, name := c.Param("slug"), c.Param("action")

	action, err := s.catalog.Action(kind, slug, name)
	if err != nil {
		if !errors.Is(err, content.ErrNotFound) {
			s.logger.Error("resolve link", zap.Error(err))
		}
		c.String(http.StatusNotFound, "link not available")
		return
	}

	s.metrics.OutboundClick(string(kind), name)
	if s.store != nil {
		click := store.Click{Kind: string(kind), Slug: slug, Action: name, URL: action.URL}
		if err := s.store.RecordClick(c.Request.Context(), click); err != nil {
			s.logger.Warn("record click", zap.Error(err), zap.String("url", action.URL))
		}
	}
	c.Redirect(http.StatusFound, action.URL)
}

// resumeAvailable reports whether the configured resume file can be served.
func (s *Server) resumeAvailable() bool {
	info, err := os.Stat(s.cfg.ResumePath)
	return err == nil && !info.IsDir()
}

func (s *Server) resume(c *gin.Context) {
	if !s.resumeAvailable() {
		c.String(http.StatusNotFound, "resume not available")
		return
	}
	name := s.catalog.Profile.Resume
	if name == "" {
		name = filepath.Base(s.cfg.ResumePath)
	}
	s.metrics.OutboundClick(string(content.KindProfile), "resume")
	c.FileAttachment(s.cfg.ResumePath, name)
}

func (s *Server) privacy(c *gin.Context) {
	c.HTML(http.StatusOK, "privacy.html", gin.H{
		"title":     "Privacy Policy",
		"retention": s.cfg.VisitorRetention.String(),
	})
}

// loaderView is the JSON shape of one loader state.
type loaderView struct {
	Completed int             `json:"completed"`
	Total     int             `json:"total"`
	Progress  int             `json:"progress"`
	Done      bool            `json:"done"`
	Steps     []loaderStepDTO `json:"steps"`
}

type loaderStepDTO struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	Label      string `json:"label"`
	DurationMS int64  `json:"duration_ms"`
}

func viewOf(seq *loader.Sequence, st loader.State) loaderView {
	v := loaderView{Completed: st.Completed, Total: st.Total, Progress: st.Progress(), Done: st.Done()}
	for i, step := range seq.Steps() {
		v.Steps = append(v.Steps, loaderStepDTO{
			ID:         step.ID,
			Name:       step.Name,
			Status:     string(st.StatusOf(i)),
			Label:      seq.Label(st, i),
			DurationMS: step.DurationMillis(),
		})
	}
	return v
}
