// Package service contains the card generation use cases. CardService
// coordinates the text and image generators, the asset store and the card
// repository to produce, persist and refresh cards, one at a time or in bulk.
//
// Dependencies are injected through Deps; the service never reaches for
// infrastructure directly. Generation triggered by an HTTP request should be
// run on a context detached from the request's cancellation, since the
// polling budget of the image provider is the only intended deadline.
package service
