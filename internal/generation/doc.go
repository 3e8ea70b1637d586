// Package generation defines the ports between the card pipeline and the
// external generative services: a TextGenerator that turns a technology name
// into card text and stats, and an ImageGenerator that turns an image prompt
// into artwork bytes. Concrete adapters live under internal/platform.
package generation
