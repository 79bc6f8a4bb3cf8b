package model

// Author is the (identifier, display name) pair stamped onto a Post at
// creation time. The name is denormalized on purpose: it is captured
// once and never refreshed, so a post keeps showing the name its author
// had when they wrote it.
type Author struct {
	ID   int64  `json:"id"   db:"author_id"`
	Name string `json:"name" db:"author_name"`
}

// Post represents a blog entry.
//
// The title doubles as the human-facing lookup key in URLs
// (GET /blogs/{title}), matched case-insensitively. Nothing enforces
// title uniqueness; when titles collide, lookups resolve to the most
// recently written match, which is why edit and delete forms carry the
// ID as well.
//
// Date is a formatted display string ("January 2, 2006"), not a
// sortable timestamp — it is stamped at creation and immutable, exactly
// like the author binding. Only Title and Body may change after
// creation.
type Post struct {
	ID     string `json:"id"     db:"id"`
	Title  string `json:"title"  db:"title"`
	Body   string `json:"body"   db:"body"`
	Author Author `json:"author"`
	Date   string `json:"date"   db:"date"`
}
