// Package github adapts the GitHub REST API to the review pipeline.
//
// [Client] lists the files a pull request changes, fetches file content at
// the pull request's head commit, and posts issue comments. It is built on
// go-github with an oauth2 token transport, follows pagination, and pauses
// when the remaining rate limit runs low.
package github
