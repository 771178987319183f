// Package entity defines the record type that every errand use case operates on,
// together with its validation rules and the Redis schema used to mirror commits.
//
// # Overview
//
// An Entity is a plain record with an immutable identity and a handful of
// descriptive fields: a refreshment point, a news item, a registration request.
// Entities live in an in-memory repository for the lifetime of the process and
// are recreated from seed data at every start.
//
// A Patch carries optional new field values for an update. Applying a patch
// always produces a copy; the original entity is never mutated and the ID is
// never touched.
//
// # Validation
//
// Validation is declarative, using go-playground/validator struct tags:
//
//	e := entity.Entity{ID: "P001", Name: "Cafe Central", Status: entity.StatusActive}
//	if err := e.Validate(); err != nil {
//		return err
//	}
//
// # Redis Schema
//
// When commits are mirrored to a Redis remote, keys follow the pattern
// errand:{namespace}:entity:{id} (a hash) and commit events are published on
// errand:{namespace}:commit_events.
package entity
