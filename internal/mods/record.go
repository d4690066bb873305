package mods

import (
	"encoding/json"
	"fmt"
	"strconv"
)

const (
	modrinthURLBase   = "https://modrinth.com/mod/"
	curseForgeURLBase = "https://www.curseforge.com/minecraft/mc-mods/"
)

// Project is implemented by each native upstream project shape.
type Project interface {
	Source() Source
	ProjectID() string
	ProjectTitle() string
	ProjectSlug() string
	ProjectDescription() string
	ProjectURL() string

	sealed()
}

// ModrinthProject is the subset of a Modrinth project that packwizml keeps.
type ModrinthProject struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url,omitempty"`
	Team        string `json:"team,omitempty"`
}

func (p ModrinthProject) Source() Source             { return Modrinth }
func (p ModrinthProject) ProjectID() string          { return p.ID }
func (p ModrinthProject) ProjectTitle() string       { return p.Title }
func (p ModrinthProject) ProjectSlug() string        { return p.Slug }
func (p ModrinthProject) ProjectDescription() string { return p.Description }
func (p ModrinthProject) sealed()                    {}

func (p ModrinthProject) ProjectURL() string {
	if p.Slug != "" {
		return modrinthURLBase + p.Slug
	}
	return modrinthURLBase + p.ID
}

// CurseForgeAuthor is a project member on CurseForge.
type CurseForgeAuthor struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// CurseForgeLogo is the project icon on CurseForge.
type CurseForgeLogo struct {
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// CurseForgeProject is the subset of a CurseForge mod that packwizml keeps.
type CurseForgeProject struct {
	ID      int                `json:"id"`
	Name    string             `json:"name"`
	Slug    string             `json:"slug"`
	Summary string             `json:"summary"`
	Authors []CurseForgeAuthor `json:"authors,omitempty"`
	Logo    *CurseForgeLogo    `json:"logo,omitempty"`
}

func (p CurseForgeProject) Source() Source             { return CurseForge }
func (p CurseForgeProject) ProjectID() string          { return strconv.Itoa(p.ID) }
func (p CurseForgeProject) ProjectTitle() string       { return p.Name }
func (p CurseForgeProject) ProjectSlug() string        { return p.Slug }
func (p CurseForgeProject) ProjectDescription() string { return p.Summary }
func (p CurseForgeProject) sealed()                    {}

func (p CurseForgeProject) ProjectURL() string {
	if p.Slug != "" {
		return curseForgeURLBase + p.Slug
	}
	return "https://www.curseforge.com/projects/" + strconv.Itoa(p.ID)
}

// Record is the unified, source-agnostic view of a fetched project.
type Record struct {
	project Project
}

// FromModrinth wraps a Modrinth project.
func FromModrinth(p ModrinthProject) Record { return Record{project: p} }

// FromCurseForge wraps a CurseForge project.
func FromCurseForge(p CurseForgeProject) Record { return Record{project: p} }

// Project returns the native project, or nil for a zero Record.
func (r Record) Project() Project { return r.project }

func (r Record) Source() Source {
	if r.project == nil {
		return ""
	}
	return r.project.Source()
}

func (r Record) ID() string {
	if r.project == nil {
		return ""
	}
	return r.project.ProjectID()
}

func (r Record) Title() string {
	if r.project == nil {
		return ""
	}
	return r.project.ProjectTitle()
}

func (r Record) Slug() string {
	if r.project == nil {
		return ""
	}
	return r.project.ProjectSlug()
}

func (r Record) Description() string {
	if r.project == nil {
		return ""
	}
	return r.project.ProjectDescription()
}

func (r Record) URL() string {
	if r.project == nil {
		return ""
	}
	return r.project.ProjectURL()
}

// Key returns the cache key the record belongs under.
func (r Record) Key() Key {
	return Key{Source: r.Source(), ID: r.ID()}
}

// Equal compares records by their display accessors.
func (r Record) Equal(o Record) bool {
	return r.Source() == o.Source() &&
		r.ID() == o.ID() &&
		r.Slug() == o.Slug() &&
		r.Title() == o.Title() &&
		r.Description() == o.Description() &&
		r.URL() == o.URL()
}

type recordJSON struct {
	Source  Source          `json:"source"`
	Project json.RawMessage `json:"project"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	if r.project == nil {
		return []byte("null"), nil
	}
	body, err := json.Marshal(r.project)
	if err != nil {
		return nil, err
	}
	return json.Marshal(recordJSON{Source: r.project.Source(), Project: body})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		r.project = nil
		return nil
	}
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Source {
	case Modrinth:
		var p ModrinthProject
		if err := json.Unmarshal(raw.Project, &p); err != nil {
			return fmt.Errorf("modrinth project: %w", err)
		}
		r.project = p
	case CurseForge:
		var p CurseForgeProject
		if err := json.Unmarshal(raw.Project, &p); err != nil {
			return fmt.Errorf("curseforge project: %w", err)
		}
		r.project = p
	default:
		return fmt.Errorf("unknown record source %q", raw.Source)
	}
	return nil
}
