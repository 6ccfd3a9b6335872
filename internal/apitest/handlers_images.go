// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apitest

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	// Registered decoders for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taibuivan/vizion/internal/images"
	"github.com/taibuivan/vizion/internal/platform/apperr"
	"github.com/taibuivan/vizion/internal/platform/constants"
	"github.com/taibuivan/vizion/pkg/slice"
)

// multipartOverhead is the room left for boundaries and part headers on top
// of the file size limit.
const multipartOverhead = 1 << 20

// # Seeding

// AddImage stores content for userID as if it had been uploaded, and returns
// the resulting image.
func (server *Server) AddImage(userID, fileName string, content []byte) (images.Image, error) {
	config, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return images.Image{}, fmt.Errorf("apitest: %s is not an image: %w", fileName, err)
	}

	id := newID()
	key := path.Join(userID, id+path.Ext(fileName))

	img := images.Image{
		ID:           id,
		UserID:       userID,
		OriginalName: fileName,
		StorageKey:   key,
		MimeType:     mimetype.Detect(content).String(),
		Size:         int64(len(content)),
		Dimensions: images.Dimensions{
			Width:  config.Width,
			Height: config.Height,
			Format: format,
		},
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	server.mu.Lock()
	server.files[key] = bytes.Clone(content)
	server.gallery[userID] = slice.Prepend(server.gallery[userID], img)
	server.mu.Unlock()

	return server.withURL(img), nil
}

// # Handlers

// uploadImage handles POST /images.
func (server *Server) uploadImage(writer http.ResponseWriter, request *http.Request) {
	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxUploadSize+multipartOverhead)

	file, header, err := request.FormFile(constants.ImageFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeTooLarge(writer)
			return
		}
		writeError(writer, http.StatusBadRequest, apperr.CodeValidation, "No file uploaded")
		return
	}
	defer file.Close()

	if header.Size > constants.MaxUploadSize {
		writeTooLarge(writer)
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeInternal(writer)
		return
	}

	img, err := server.AddImage(currentUserID(request), header.Filename, content)
	if err != nil {
		writeError(writer, http.StatusBadRequest, apperr.CodeInvalidFile, "Only image files are allowed")
		return
	}

	writeCreated(writer, "Image uploaded successfully", img)
}

// listImages handles GET /images.
func (server *Server) listImages(writer http.ResponseWriter, request *http.Request) {
	server.mu.Lock()
	stored := slice.Clone(server.gallery[currentUserID(request)])
	server.mu.Unlock()

	list := make([]images.Image, 0, len(stored))
	for _, img := range stored {
		list = append(list, server.withURL(img))
	}

	writeOK(writer, "Images retrieved successfully", list)
}

// getImage handles GET /images/{id}.
func (server *Server) getImage(writer http.ResponseWriter, request *http.Request) {
	img, found := server.findImage(currentUserID(request), chi.URLParam(request, "id"))
	if !found {
		writeNotFound(writer, "Image not found")
		return
	}
	writeOK(writer, "Image retrieved successfully", server.withURL(img))
}

// deleteImage handles DELETE /images/{id}.
func (server *Server) deleteImage(writer http.ResponseWriter, request *http.Request) {
	userID := currentUserID(request)
	id := chi.URLParam(request, "id")

	server.mu.Lock()
	gallery := server.gallery[userID]
	index := slice.IndexOf(gallery, func(img images.Image) bool { return img.ID == id })
	if index >= 0 {
		delete(server.files, gallery[index].StorageKey)
		server.gallery[userID] = slice.Remove(gallery, func(img images.Image) bool { return img.ID == id })
	}
	server.mu.Unlock()

	if index < 0 {
		writeNotFound(writer, "Image not found")
		return
	}
	writeOK(writer, "Image deleted successfully", nil)
}

// serveFile handles GET /files/{key}, the display URLs.
func (server *Server) serveFile(writer http.ResponseWriter, request *http.Request) {
	key := strings.TrimPrefix(chi.URLParam(request, "*"), "/")

	server.mu.Lock()
	content, found := server.files[key]
	server.mu.Unlock()

	if !found {
		http.NotFound(writer, request)
		return
	}

	writer.Header().Set(constants.HeaderContentType, mimetype.Detect(content).String())
	_, _ = writer.Write(content)
}

// # Helpers

func (server *Server) findImage(userID, id string) (images.Image, bool) {
	server.mu.Lock()
	defer server.mu.Unlock()

	gallery := server.gallery[userID]
	index := slice.IndexOf(gallery, func(img images.Image) bool { return img.ID == id })
	if index < 0 {
		return images.Image{}, false
	}
	return gallery[index], true
}

// withURL resolves the display URL at read time.
func (server *Server) withURL(img images.Image) images.Image {
	img.URL = server.URL() + "/files/" + img.StorageKey
	return img
}

func writeTooLarge(writer http.ResponseWriter) {
	writeError(writer, http.StatusRequestEntityTooLarge, apperr.CodeTooLarge, "File size exceeds 10MB limit")
}

// newID returns a time-sortable identifier.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
