package video

import (
	"net/url"
	"path"
	"strings"
)

type EmbedType int

const (
	EmbedTypeNone EmbedType = iota
	EmbedTypeYouTube
	EmbedTypeVideo
	EmbedTypeIframe
)

// Format is the value stored in the video format column.
func (t EmbedType) Format() string {
	switch t {
	case EmbedTypeYouTube:
		return "youtube"
	case EmbedTypeIframe:
		return "iframe"
	}
	return ""
}

type EmbedInfo struct {
	Type EmbedType
	URL  string
	// Ext is the lower-cased file extension without the dot, set for direct video files.
	Ext string
}

func (e EmbedInfo) Format() string {
	if e.Type == EmbedTypeVideo {
		return e.Ext
	}
	return e.Type.Format()
}

var videoExtensions = map[string]bool{
	"mp4": true, "webm": true, "ogg": true, "mov": true, "mkv": true, "avi": true, "m4v": true,
}

// GetEmbedInfo classifies an external http(s) link. Anything unparsable is EmbedTypeNone.
func GetEmbedInfo(link string) EmbedInfo {
	link = strings.TrimSpace(link)
	u, err := url.Parse(link)
	if link == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return EmbedInfo{Type: EmbedTypeNone}
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	switch host {
	case "youtube.com", "youtube-nocookie.com":
		if strings.HasPrefix(u.Path, "/embed/") {
			return EmbedInfo{Type: EmbedTypeYouTube, URL: link}
		}
		if id := u.Query().Get("v"); id != "" {
			return youtubeEmbed(id)
		}
		if id, ok := strings.CutPrefix(u.Path, "/shorts/"); ok && id != "" {
			return youtubeEmbed(id)
		}
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return youtubeEmbed(id)
		}
	}

	ext := strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), ".")
	if videoExtensions[ext] {
		return EmbedInfo{Type: EmbedTypeVideo, URL: link, Ext: ext}
	}

	// Default to generic iframe and hope for the best
	return EmbedInfo{Type: EmbedTypeIframe, URL: link}
}

func youtubeEmbed(id string) EmbedInfo {
	return EmbedInfo{Type: EmbedTypeYouTube, URL: "https://www.youtube.com/embed/" + id}
}
