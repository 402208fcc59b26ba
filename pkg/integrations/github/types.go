package github

// User is the authenticated GitHub account, from GET /user.
type User struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
}

// Pull is a pull request as returned by the pulls endpoints.
type Pull struct {
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	State   string `json:"state"`
}

// pullRequestPayload is the body for POST /repos/{repo}/pulls.
type pullRequestPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Base  string `json:"base"`
	Head  string `json:"head"`
}

// pullUpdatePayload is the body for PATCH /repos/{repo}/pulls/{number}.
type pullUpdatePayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}
