// Package catalog models the content side of the newsroom: articles, videos,
// and podcasts with their visibility lifecycle (draft -> published), the
// editorial promotion flags (featured, editor's pick), the closed category
// taxonomy, and the team roster.
//
// Public listings never return drafts, regardless of caller role. Draft
// visibility is exposed only through the authoring surface, which routes the
// caller's role through the newsroom capability evaluator: edit-any-content
// sees every draft, author-content sees only the caller's own.
//
// The catalog holds no caching guarantees beyond what its backing store
// provides and tolerates concurrent reads without coordination; listings are
// read-only snapshots.
package catalog
