// Package textutil provides text processing utilities for lyrics comparison,
// title suggestion, and file-name/slug derivation.
//
// The primary use cases are:
//   - Fingerprinting lyrics as term-frequency vectors and comparing them with
//     cosine similarity
//   - Picking the closest candidate title by edit distance
//   - Deriving file names and slugs for album directories and lyrics documents
//
// Tokenization lowercases text, drops bracketed section tags such as
// "[Chorus]", and splits on anything that is not a letter or digit.
package textutil
