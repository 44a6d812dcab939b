// Package page defines how the validator observes the Acidwave UI and provides
// inspectors over captured page state.
package page

import (
	"context"
)

// Inspector exposes the observable state of a page. Implementations may
// block, so every call takes a context.
type Inspector interface {
	// Text returns the rendered text of the page body
	Text(ctx context.Context) (string, error)
	// URL returns the current page URL
	URL(ctx context.Context) (string, error)
	// Query returns the elements matching selector in document order.
	// No match is an empty slice, not an error.
	Query(ctx context.Context, selector string) ([]Element, error)
}

// Element is a single element returned by Inspector.Query
type Element interface {
	IsVisible(ctx context.Context) (bool, error)
	// Attribute returns the attribute value and whether the attribute is present
	Attribute(ctx context.Context, name string) (string, bool, error)
	Text(ctx context.Context) (string, error)
}
