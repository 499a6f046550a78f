// Package gh provides GitHub API client interfaces and types
package gh

import "time"

// User represents the authenticated GitHub user
type User struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// PR represents a GitHub pull request
type PR struct {
	Number int    `json:"number"`
	State  string `json:"state"` // open, closed
	Title  string `json:"title"`
	Body   string `json:"body"`
	Head   struct {
		Ref string `json:"ref"` // branch name
		SHA string `json:"sha"`
	} `json:"head"`
	Base struct {
		Ref string `json:"ref"` // target branch
		SHA string `json:"sha"`
	} `json:"base"`
	User struct {
		Login string `json:"login"`
	} `json:"user"`
	HTMLURL   string    `json:"html_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PRRequest represents a request to create a pull request
type PRRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Head  string `json:"head"` // source branch (owner:branch for forks)
	Base  string `json:"base"` // target branch
}

// PRUpdate represents mutable pull request fields for a PATCH call.
// Nil fields are left unchanged.
type PRUpdate struct {
	Title *string `json:"title,omitempty"`
	Body  *string `json:"body,omitempty"`
	State *string `json:"state,omitempty"`
}

// TreeEntry is one row of a tree-update payload. A nil SHA removes the path
// from the tree.
type TreeEntry struct {
	Path string  `json:"path"`
	Mode string  `json:"mode"`
	Type string  `json:"type"`
	SHA  *string `json:"sha"`
}

// blobResponse is the Git Data API's answer to a blob upload
type blobResponse struct {
	SHA string `json:"sha"`
}

// treeResponse is the Git Data API's answer to a tree creation
type treeResponse struct {
	SHA string `json:"sha"`
}

// commitResponse is the Git Data API's answer to a commit creation
type commitResponse struct {
	SHA string `json:"sha"`
}
