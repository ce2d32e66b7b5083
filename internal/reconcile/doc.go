// Package reconcile resolves freeform song titles against a canonical
// album/track catalog.
//
// Titles in the lyrics index drift from the authoritative album listings:
// capitalization, punctuation, featured-artist annotations, subtitles in
// parentheses, and the odd misspelling. Normalize and Rules.GenerateVariants
// reduce a title to the set of keys considered equivalent, and a Catalog
// built once per run maps (album, variant) to a track number.
//
// Hand-authored exceptions never live in the matching code. Album aliases,
// per-album overrides (including "this song has no track number"), title
// synonyms, and extra catalog keys are all declared in Rules, which ship as
// embedded JSON and can be replaced by a user file.
//
// A built Catalog is never mutated and is safe for concurrent readers.
package reconcile
