// Package app provides the application service layer.
//
// Orchestrates the retweet pipeline: fetch candidates from a source, apply
// the eligibility rules, persist, then retweet. Sits between HTTP handlers
// and the domain collaborators. Depends on domain interfaces, not concrete
// implementations.
package app
