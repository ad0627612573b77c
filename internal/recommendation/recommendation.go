package recommendation

import (
	"errors"
	"net/url"
	"strings"
)

// Recommendation is a named video link with a vote score.
type Recommendation struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	YoutubeLink string `json:"youtubeLink" db:"youtube_link"`
	Score       int    `json:"score" db:"score"`
}

// CreateInput is the payload accepted by Insert.
type CreateInput struct {
	Name        string `json:"name"`
	YoutubeLink string `json:"youtubeLink"`
}

var youtubeHosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
	"youtu.be":        true,
}

var (
	errNameRequired = errors.New(`"name" is required`)
	errInvalidLink  = errors.New(`"youtubeLink" must be a YouTube video link`)
)

func (in CreateInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return errNameRequired
	}
	u, err := url.Parse(strings.TrimSpace(in.YoutubeLink))
	if err != nil {
		return errInvalidLink
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errInvalidLink
	}
	if !youtubeHosts[strings.ToLower(u.Hostname())] || strings.Trim(u.Path, "/") == "" {
		return errInvalidLink
	}
	return nil
}
