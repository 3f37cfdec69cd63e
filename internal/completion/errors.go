package completion

import "errors"

// Sentinel errors for completion models and collaborators.
var (
	// ErrNoItems is returned when a model would be built from no candidates.
	ErrNoItems = errors.New("completion: no items")

	// ErrSelectionNotFiltered indicates the selected item is not visible.
	ErrSelectionNotFiltered = errors.New("completion: selected item not in filtered items")

	// ErrNoSelection indicates a model without a selected item.
	ErrNoSelection = errors.New("completion: no selected item")

	// ErrNoProvider is returned when a session has nothing to ask for candidates.
	ErrNoProvider = errors.New("completion: no provider")
)
