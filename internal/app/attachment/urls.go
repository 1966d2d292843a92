package attachment

import (
	"net/url"
	"path"
	"strings"
)

const urlSeparator = ","

// JoinURLs renders attachments as the comma-joined image_url string clients
// expect. No attachments renders as "".
func JoinURLs(atts []Attachment) string {
	urls := make([]string, 0, len(atts))
	for _, att := range atts {
		urls = append(urls, att.FileURL)
	}
	return strings.Join(urls, urlSeparator)
}

// SplitURLs is the inverse of JoinURLs; "" yields no URLs rather than one
// empty entry.
func SplitURLs(joined string) []string {
	if joined == "" {
		return nil
	}
	var urls []string
	for _, u := range strings.Split(joined, urlSeparator) {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// ObjectPathFromURL derives {userID}/{fileName} from a public URL, for
// attachments recorded without an object name.
func ObjectPathFromURL(userID, rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	name := path.Base(p)
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return userID + "/" + name
}
