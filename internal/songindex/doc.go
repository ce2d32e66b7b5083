// Package songindex reads and rewrites the per-song CSV index and the
// ground-truth track table.
//
// The index is row oriented: known columns (Album, Year, Song Title, Track
// Number, Has Lyrics) are interpreted, every other column is carried through
// untouched in its original position. Writes go through a temp file and a
// rename so an interrupted run never leaves a truncated index behind.
package songindex
