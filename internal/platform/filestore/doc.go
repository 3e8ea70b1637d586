// Package filestore keeps generated card artwork and curated icons on the
// local filesystem and translates file names into the public URL references
// stored on cards.
package filestore
