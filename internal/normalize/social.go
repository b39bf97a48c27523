package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	providerLinkedin = "linkedin"
	providerTwitter  = "twitter"

	twitterURLTemplate = "https://twitter.com/%s"
)

// SocialAccount is one provider/URL pair from a user's declared accounts
type SocialAccount struct {
	Provider string `json:"provider"`
	URL      string `json:"url"`
}

// ResolveSocials merges the declared social-account list with the two
// dedicated fields. The dedicated field wins when non-empty; otherwise the
// first matching list entry is used. A bare twitter handle is rewritten into
// a full profile URL. Every other provider lands in the overflow string as
// "<provider>: <url>" pairs, comma-joined in list order.
func ResolveSocials(accounts []SocialAccount, linkedinURL, twitterHandle string) (string, string, string) {
	linkedin := linkedinURL
	twitter := twitterHandle
	var overflow []string

	for _, a := range accounts {
		switch strings.ToLower(a.Provider) {
		case providerLinkedin:
			if linkedin == "" {
				linkedin = a.URL
			}
		case providerTwitter:
			if twitter == "" {
				twitter = a.URL
			}
		default:
			overflow = append(overflow, fmt.Sprintf("%s: %s", a.Provider, a.URL))
		}
	}

	if twitter != "" && !strings.HasPrefix(twitter, "http") {
		twitter = fmt.Sprintf(twitterURLTemplate, twitter)
	}

	return linkedin, twitter, strings.Join(overflow, ", ")
}

// ParseSocialJSON decodes a stored social-account list, swallowing parse
// failures into an empty list
func ParseSocialJSON(raw []byte) []SocialAccount {
	if len(raw) == 0 {
		return nil
	}
	var accounts []SocialAccount
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil
	}
	return accounts
}
