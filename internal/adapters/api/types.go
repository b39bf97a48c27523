package api

import (
	"encoding/json"
	"time"
)

// Stargazer is one entry of the starred listing under the star media type
type Stargazer struct {
	StarredAt time.Time `json:"starred_at"`
	User      struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
	} `json:"user"`
}

// User represents a GitHub user's public profile. Raw holds the unparsed
// response body for the audit snapshot.
type User struct {
	ID              int64  `json:"id"`
	Login           string `json:"login"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Bio             string `json:"bio"`
	Location        string `json:"location"`
	Company         string `json:"company"`
	Blog            string `json:"blog"`
	TwitterUsername string `json:"twitter_username"`

	Raw json.RawMessage `json:"-"`
}

// Repository represents the JSON structure of a GitHub repository
type Repository struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Fork     bool   `json:"fork"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Commit represents the JSON structure of a GitHub commit
type Commit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author struct {
			Name  string    `json:"name"`
			Email string    `json:"email"`
			Date  time.Time `json:"date"`
		} `json:"author"`
		Committer struct {
			Name  string    `json:"name"`
			Email string    `json:"email"`
			Date  time.Time `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}

// SocialAccount is one provider/URL pair from a user's declared accounts
type SocialAccount struct {
	Provider string `json:"provider"`
	URL      string `json:"url"`
}
