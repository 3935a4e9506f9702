// Package gitctx reads metadata from the local git checkout.
//
// It shells out to git to find the repository root and the origin remote, and
// parses GitHub owner/repo identifiers from remote URLs so a review can run
// without an explicit --repo.
package gitctx
