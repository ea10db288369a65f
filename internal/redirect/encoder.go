package redirect

import (
	"net/url"
	"strings"
)

// Query parameters and fragment of a failure redirect.
const (
	ParamCommentID = "rcommentid"
	ParamError     = "rerror"
	ParamHash      = "rchash"
	FormFragment   = "commentform"
)

// EncodeFailureRedirect rewrites the post-submission location so the next page load
// can report errorCode and restore the rejected comment. With an empty errorCode the
// location is returned unchanged.
func EncodeFailureRedirect(baseLocation, submissionID, errorCode, integrityHash string) string {
	if errorCode == "" {
		return baseLocation
	}

	location := baseLocation
	if i := strings.IndexByte(location, '#'); i >= 0 {
		location = location[:i]
	}

	sep := "&"
	if !strings.Contains(location, "?") {
		sep = "?"
	}

	var b strings.Builder
	b.WriteString(location)
	b.WriteString(sep)
	b.WriteString(ParamCommentID + "=" + url.QueryEscape(submissionID))
	b.WriteString("&" + ParamError + "=" + url.QueryEscape(errorCode))
	b.WriteString("&" + ParamHash + "=" + url.QueryEscape(integrityHash))
	b.WriteString("#" + FormFragment)
	return b.String()
}
