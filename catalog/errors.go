package catalog

import "github.com/goliatone/go-errors"

const (
	TextCodeUnknownCategory    = "CATALOG_UNKNOWN_CATEGORY"
	TextCodeUnknownContentType = "CATALOG_UNKNOWN_CONTENT_TYPE"
	TextCodeItemNotFound       = "CATALOG_ITEM_NOT_FOUND"
	TextCodeDraftAccess        = "CATALOG_DRAFT_ACCESS_DENIED"
	TextCodeNotPublished       = "CATALOG_ITEM_NOT_PUBLISHED"
	TextCodeAlreadyPublished   = "CATALOG_ITEM_ALREADY_PUBLISHED"
	TextCodePromotionDisabled  = "CATALOG_PROMOTION_DISABLED"
	TextCodePromotionForbidden = "CATALOG_PROMOTION_FORBIDDEN"
)

// ErrUnknownCategory is returned for categories outside the taxonomy. This is
// a caller defect surfaced synchronously; it never degrades to an empty
// result set.
var ErrUnknownCategory = errors.New("unknown content category", errors.CategoryValidation).
	WithTextCode(TextCodeUnknownCategory).
	WithCode(errors.CodeBadRequest)

// ErrUnknownContentType is returned for route segments outside the
// articles/videos/podcasts set.
var ErrUnknownContentType = errors.New("unknown content type", errors.CategoryBadInput).
	WithTextCode(TextCodeUnknownContentType).
	WithCode(errors.CodeBadRequest)

// ErrItemNotFound is returned when a content item id resolves to nothing.
var ErrItemNotFound = errors.New("content item not found", errors.CategoryNotFound).
	WithTextCode(TextCodeItemNotFound).
	WithCode(errors.CodeNotFound)

// ErrDraftAccess is returned when the authoring surface is queried without
// author-content or edit-any-content.
var ErrDraftAccess = errors.New("draft access requires an authoring capability", errors.CategoryAuthz).
	WithTextCode(TextCodeDraftAccess).
	WithCode(errors.CodeForbidden)

// ErrNotPublished is returned when a promotion flag is applied to a draft.
var ErrNotPublished = errors.New("promotion flags require a published item", errors.CategoryConflict).
	WithTextCode(TextCodeNotPublished).
	WithCode(errors.CodeConflict)

// ErrAlreadyPublished is returned when a published item is saved as a draft.
// The visibility transition is one way.
var ErrAlreadyPublished = errors.New("published items cannot return to draft", errors.CategoryConflict).
	WithTextCode(TextCodeAlreadyPublished).
	WithCode(errors.CodeConflict)

// ErrPromotionDisabled is returned when the promotion feature gate is off.
var ErrPromotionDisabled = errors.New("editorial promotion is disabled", errors.CategoryAuthz).
	WithTextCode(TextCodePromotionDisabled).
	WithCode(errors.CodeForbidden)

// ErrPromotionForbidden is returned when the actor lacks edit-any-content.
var ErrPromotionForbidden = errors.New("editorial promotion requires edit-any-content", errors.CategoryAuthz).
	WithTextCode(TextCodePromotionForbidden).
	WithCode(errors.CodeForbidden)
