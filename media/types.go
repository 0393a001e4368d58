// Package media is a client for the upstream photo library API.
package media

import "encoding/json"

// Media types accepted by the upstream media type filter.
const (
	TypePhoto = "PHOTO"
	TypeVideo = "VIDEO"
)

type MediaItem struct {
	ID            string         `json:"id"`
	Description   string         `json:"description,omitempty"`
	ProductURL    string         `json:"productUrl,omitempty"`
	BaseURL       string         `json:"baseUrl,omitempty"`
	MimeType      string         `json:"mimeType,omitempty"`
	Filename      string         `json:"filename"`
	MediaMetadata *MediaMetadata `json:"mediaMetadata,omitempty"`
}

// MediaMetadata keeps the photo and video blocks opaque; they are passed to the browser as-is.
type MediaMetadata struct {
	CreationTime string          `json:"creationTime,omitempty"`
	Width        string          `json:"width,omitempty"`
	Height       string          `json:"height,omitempty"`
	Photo        json.RawMessage `json:"photo,omitempty"`
	Video        json.RawMessage `json:"video,omitempty"`
}

// Page is one page of a listing or search. NextPageToken is opaque and only valid for the
// stream that produced it.
type Page struct {
	Items         []MediaItem `json:"mediaItems"`
	NextPageToken string      `json:"nextPageToken,omitempty"`
}

// Filter selects content categories. MediaType must be set whenever Categories is non-empty.
type Filter struct {
	Categories []string `json:"categories,omitempty"`
	MediaType  string   `json:"mediaType,omitempty"`
}

type searchRequest struct {
	PageSize  int            `json:"pageSize,omitempty"`
	PageToken string         `json:"pageToken,omitempty"`
	Filters   *searchFilters `json:"filters,omitempty"`
}

type searchFilters struct {
	ContentFilter   *contentFilter   `json:"contentFilter,omitempty"`
	MediaTypeFilter *mediaTypeFilter `json:"mediaTypeFilter,omitempty"`
}

type contentFilter struct {
	IncludedContentCategories []string `json:"includedContentCategories"`
}

type mediaTypeFilter struct {
	MediaTypes []string `json:"mediaTypes"`
}

func newSearchRequest(f Filter, pageSize int, pageToken string) searchRequest {
	req := searchRequest{PageSize: pageSize, PageToken: pageToken}
	if len(f.Categories) == 0 && f.MediaType == "" {
		return req
	}
	req.Filters = &searchFilters{}
	if len(f.Categories) > 0 {
		req.Filters.ContentFilter = &contentFilter{IncludedContentCategories: f.Categories}
	}
	if f.MediaType != "" {
		req.Filters.MediaTypeFilter = &mediaTypeFilter{MediaTypes: []string{f.MediaType}}
	}
	return req
}
