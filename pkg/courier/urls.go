package courier

import "regexp"

// videoURLRegex accepts YouTube watch/embed/live/short-host links with an
// optional scheme and www/m subdomain.
var videoURLRegex = regexp.MustCompile(
	`^((?:https?:)?//)?((?:www|m)\.)?(youtube(?:-nocookie)?\.com|youtu\.be)(/(?:[\w-]+\?v=|embed/|live/|v/)?)([\w-]+)(\S+)?$`)

// MatchVideoURL reports whether text is an acceptable video link.
func MatchVideoURL(text string) bool {
	return videoURLRegex.MatchString(text)
}

// ExtractVideoID pulls the video identifier out of an accepted link.
// Returns "" when the link does not match.
func ExtractVideoID(text string) string {
	m := videoURLRegex.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[5]
}
