// Package match filters and ranks completion items against the text the
// user has typed.
//
// Filter runs one pass over a model's items and returns the model that
// should be shown next, or nil when the popup should close. The helpers
// it is built from (Matches, IsBetterMatch, IsHardSelection and
// MatchPattern) are exported so the controller can apply the same rules
// when deciding what a keystroke means.
//
// Pattern matches are ranked by kind first:
//
//	exact < prefix < camel-case humps < substring < fuzzy subsequence
//
// and a case-sensitive match beats a case-insensitive one of the same kind.
// Within a kind, a score adapted from the fuzzy finder's weights breaks ties.
package match
