package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Visibility is the lifecycle state of a content item
type Visibility string

const (
	// VisibilityDraft items are only reachable through the authoring surface
	VisibilityDraft Visibility = "draft"
	// VisibilityPublished items appear in public listings
	VisibilityPublished Visibility = "published"
)

// Category is one of the fixed taxonomy entries. Unknown categories are a
// data-integrity error, never a silent default.
type Category string

const (
	CategoryTechnology Category = "Technology"
	CategoryDesign     Category = "Design"
	CategoryCulture    Category = "Culture"
	CategoryBusiness   Category = "Business"
	CategoryScience    Category = "Science"
)

// AllCategories returns the closed taxonomy set.
func AllCategories() []Category {
	return []Category{
		CategoryTechnology,
		CategoryDesign,
		CategoryCulture,
		CategoryBusiness,
		CategoryScience,
	}
}

// IsValid checks whether the category belongs to the taxonomy.
func (c Category) IsValid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory safely parses a string into a Category.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	return c, c.IsValid()
}

// Editorial carries the lifecycle and promotion state every content type
// shares. IsFeatured is a display convention (at most one active item per
// type); IsEditorsPick allows many.
type Editorial struct {
	Visibility    Visibility `bun:"visibility,notnull,default:'draft'" json:"visibility,omitempty"`
	Category      Category   `bun:"category,notnull" json:"category,omitempty"`
	IsFeatured    bool       `bun:"is_featured" json:"is_featured,omitempty"`
	IsEditorsPick bool       `bun:"is_editors_pick" json:"is_editors_pick,omitempty"`
	PublishedAt   *time.Time `bun:"published_at,nullzero" json:"published_at,omitempty"`
}

// IsPublished reports whether the item left the draft state.
func (e *Editorial) IsPublished() bool {
	return e != nil && e.Visibility == VisibilityPublished
}

// Item is the common surface the catalog service needs from a content type.
type Item interface {
	GetID() uuid.UUID
	GetTitle() string
	// OwnerID references the authoring profile (author or host).
	OwnerID() uuid.UUID
	// State exposes the shared editorial lifecycle for mutation.
	State() *Editorial
	// MatchTags returns the variant's tag set; types without tags return nil.
	MatchTags() []string
}

// Article is a written piece.
type Article struct {
	bun.BaseModel `bun:"table:articles,alias:art"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	Slug          string     `bun:"slug,notnull,unique" json:"slug,omitempty"`
	Excerpt       string     `bun:"excerpt" json:"excerpt,omitempty"`
	Body          string     `bun:"body" json:"body,omitempty"`
	AuthorID      uuid.UUID  `bun:"author_id,notnull,type:uuid" json:"author_id,omitempty"`
	Tags          []string   `bun:"tags,type:jsonb" json:"tags,omitempty"`
	ReadMinutes   int        `bun:"read_minutes" json:"read_minutes,omitempty"`
	Editorial     `json:"editorial"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

func (a *Article) GetID() uuid.UUID   { return a.ID }
func (a *Article) GetTitle() string   { return a.Title }
func (a *Article) OwnerID() uuid.UUID { return a.AuthorID }
func (a *Article) State() *Editorial  { return &a.Editorial }
func (a *Article) MatchTags() []string {
	return a.Tags
}

// Video is a produced video item. HostID references the presenting profile.
type Video struct {
	bun.BaseModel `bun:"table:videos,alias:vid"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	Slug          string     `bun:"slug,notnull,unique" json:"slug,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	HostID        uuid.UUID  `bun:"host_id,notnull,type:uuid" json:"host_id,omitempty"`
	Tags          []string   `bun:"tags,type:jsonb" json:"tags,omitempty"`
	Duration      string     `bun:"duration" json:"duration,omitempty"`
	ThumbnailURL  string     `bun:"thumbnail_url" json:"thumbnail_url,omitempty"`
	VideoURL      string     `bun:"video_url" json:"video_url,omitempty"`
	Editorial     `json:"editorial"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

func (v *Video) GetID() uuid.UUID   { return v.ID }
func (v *Video) GetTitle() string   { return v.Title }
func (v *Video) OwnerID() uuid.UUID { return v.HostID }
func (v *Video) State() *Editorial  { return &v.Editorial }
func (v *Video) MatchTags() []string {
	return v.Tags
}

// Podcast is an episodic audio item; season/episode replace tags for this
// variant.
type Podcast struct {
	bun.BaseModel `bun:"table:podcasts,alias:pod"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	Slug          string     `bun:"slug,notnull,unique" json:"slug,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	HostID        uuid.UUID  `bun:"host_id,notnull,type:uuid" json:"host_id,omitempty"`
	Season        int        `bun:"season" json:"season,omitempty"`
	Episode       int        `bun:"episode" json:"episode,omitempty"`
	Duration      string     `bun:"duration" json:"duration,omitempty"`
	AudioURL      string     `bun:"audio_url" json:"audio_url,omitempty"`
	Editorial     `json:"editorial"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

func (p *Podcast) GetID() uuid.UUID    { return p.ID }
func (p *Podcast) GetTitle() string    { return p.Title }
func (p *Podcast) OwnerID() uuid.UUID  { return p.HostID }
func (p *Podcast) State() *Editorial   { return &p.Editorial }
func (p *Podcast) MatchTags() []string { return nil }

// TeamMember is a display roster entry. Role here is an editorial title,
// independent of any authenticable account's site role.
type TeamMember struct {
	bun.BaseModel `bun:"table:team_members,alias:tmm"`
	ID            uuid.UUID         `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string            `bun:"name,notnull" json:"name,omitempty"`
	Role          string            `bun:"member_role,notnull" json:"member_role,omitempty"`
	Bio           string            `bun:"bio" json:"bio,omitempty"`
	AvatarURL     string            `bun:"avatar_url" json:"avatar_url,omitempty"`
	SocialLinks   map[string]string `bun:"social_links,type:jsonb" json:"social_links,omitempty"`
	SortOrder     int               `bun:"sort_order" json:"sort_order,omitempty"`
	CreatedAt     *time.Time        `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time        `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time        `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

var (
	_ Item = (*Article)(nil)
	_ Item = (*Video)(nil)
	_ Item = (*Podcast)(nil)
)
