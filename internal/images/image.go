// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package images implements the client side of the gallery: the request
builders for the /images endpoints and the collection store that holds the
loaded images, the search query and the filtered view derived from both.

# Architecture

  - Service: one method per endpoint, no state, errors passed through.
  - CollectionStore: newest-first collection, unique by id, with
    load/upload/delete and a pure search projection.
  - Filter, FormatSize, FormatDate: helpers shared by every front end.
*/
package images

// # Domain Entities

// Image is a stored image as reported by the API.
type Image struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	OriginalName string     `json:"originalName"`
	StorageKey   string     `json:"storageKey"`
	MimeType     string     `json:"mimeType"`
	Size         int64      `json:"size"`
	Dimensions   Dimensions `json:"dimensions"`
	CreatedAt    string     `json:"createdAt"`

	// URL is a display URL resolved by the server at read time.
	// It may be empty right after some operations.
	URL string `json:"url,omitempty"`
}

// Dimensions describes the decoded image header.
type Dimensions struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// HasURL reports whether the image can be downloaded or displayed.
func (img Image) HasURL() bool { return img.URL != "" }
