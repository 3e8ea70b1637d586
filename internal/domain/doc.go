// Package domain contains the core business entities, value objects, and
// domain logic of the application. It represents the heart of the system,
// independent of any specific infrastructure or delivery mechanism.
//
// The central entity is the Card: a generated profile of a programming
// language or technology, keyed by its canonical name.
package domain
