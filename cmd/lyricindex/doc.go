// Package main hosts the lyricindex CLI entrypoint and command graph.
//
// Commands build and reconcile the per-song CSV index, merge lyrics document
// metadata back into it, look up track numbers, and run the lyrics fetcher.
// Configuration loading and logger construction happen once per invocation
// in commandContext; the work itself lives in the internal packages.
package main
