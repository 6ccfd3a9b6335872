// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package images

import (
	"context"
	"errors"
	"io"
	"net/url"

	"github.com/taibuivan/vizion/internal/platform/constants"
	"github.com/taibuivan/vizion/internal/platform/transport"
)

// ErrNoURL is returned by [Service.Download] for an image without a display URL.
var ErrNoURL = errors.New("Image URL not available")

// # Contracts & Types

// Requester is the subset of the transport client the image endpoints need.
type Requester interface {
	Get(ctx context.Context, path string) (*transport.Envelope, error)
	PostMultipart(ctx context.Context, path string, form *transport.Form) (*transport.Envelope, error)
	Delete(ctx context.Context, path string) (*transport.Envelope, error)
	Download(ctx context.Context, rawURL string, w io.Writer) (int64, error)
}

// Service maps the gallery operations onto API calls.
//
// Errors from the transport are returned unchanged.
type Service struct {
	client Requester
}

// NewService constructs a [Service] over the given transport.
func NewService(client Requester) *Service {
	return &Service{client: client}
}

// Upload sends content as the multipart field "image". The server enforces
// the size limit; an oversized file comes back as its error.
//
// POST /images
func (service *Service) Upload(ctx context.Context, content []byte, fileName string) (*Image, error) {
	form := transport.NewForm().AddFile(constants.ImageFormField, fileName, content)

	envelope, err := service.client.PostMultipart(ctx, constants.PathImages, form)
	if err != nil {
		return nil, err
	}
	return decodeImage(envelope)
}

// List returns every image of the signed-in user, newest first.
//
// GET /images
func (service *Service) List(ctx context.Context) ([]Image, error) {
	envelope, err := service.client.Get(ctx, constants.PathImages)
	if err != nil {
		return nil, err
	}

	list, err := transport.DecodeData[[]Image](envelope)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Image{}
	}
	return list, nil
}

// Get returns a single image.
//
// GET /images/{id}
func (service *Service) Get(ctx context.Context, id string) (*Image, error) {
	envelope, err := service.client.Get(ctx, imagePath(id))
	if err != nil {
		return nil, err
	}
	return decodeImage(envelope)
}

// Delete removes an image.
//
// DELETE /images/{id}
func (service *Service) Delete(ctx context.Context, id string) error {
	_, err := service.client.Delete(ctx, imagePath(id))
	return err
}

// Download streams the image behind img.URL into w.
func (service *Service) Download(ctx context.Context, img Image, w io.Writer) (int64, error) {
	if !img.HasURL() {
		return 0, ErrNoURL
	}
	return service.client.Download(ctx, img.URL, w)
}

func imagePath(id string) string {
	return constants.PathImages + "/" + url.PathEscape(id)
}

func decodeImage(envelope *transport.Envelope) (*Image, error) {
	img, err := transport.DecodeData[Image](envelope)
	if err != nil {
		return nil, err
	}
	return &img, nil
}
