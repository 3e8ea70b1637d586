// Package replicate implements generation.ImageGenerator against the
// Replicate predictions API. A prediction is submitted once and then polled
// at a fixed interval through an explicit state machine until it succeeds,
// fails, or the attempt budget is spent; the first output URL is then
// downloaded.
package replicate
