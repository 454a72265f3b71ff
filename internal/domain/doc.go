// Package domain holds the core model types and the interfaces the rest of
// the application is wired through.
//
// The Tweet entity is plain data; persistence and platform access live behind
// TweetRepository and SocialClient so the filtering and pipeline logic never
// depend on a concrete storage or API technology.
package domain
