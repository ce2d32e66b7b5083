// Package frontmatter reads and writes the markdown lyrics documents and
// merges their YAML metadata into the song index.
//
// Field order inside the YAML block is preserved across a read/write cycle so
// rewriting a document only changes the fields that were set.
package frontmatter
