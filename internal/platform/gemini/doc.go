// Package gemini provides implementations of the generation interfaces backed
// by Google's generative APIs through the google.golang.org/genai SDK.
//
// TextGenerator renders a prompt template for a technology name, asks a
// Gemini model for a JSON document constrained by a response schema, and
// validates the decoded document before turning it into domain.CardText.
//
// ImageGenerator calls an Imagen model synchronously and returns the first
// generated image. It is the alternative to the asynchronous Replicate
// provider in internal/platform/replicate.
package gemini
