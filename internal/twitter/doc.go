// Package twitter implements the social platform API collaborator.
//
// Requests are signed with OAuth1 user-context credentials and sent through a
// retrying HTTP client. Timeline and search use the v2 API; trends still live
// on the v1.1 API. Raw response items are mapped into domain.Tweet values by
// this package so nothing upstream sees wire formats.
package twitter
