// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package transport

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Form is a multipart/form-data payload under construction.
type Form struct {
	files []formFile
}

type formFile struct {
	field    string
	fileName string
	content  []byte
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{}
}

// AddFile appends a file part. Its Content-Type is sniffed from content, the
// way a browser labels a picked file.
func (f *Form) AddFile(field, fileName string, content []byte) *Form {
	f.files = append(f.files, formFile{field: field, fileName: fileName, content: content})
	return f
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encode renders the form and returns the body with its Content-Type
// (multipart/form-data; boundary=...).
func (f *Form) encode() (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, file := range f.files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(file.field), quoteEscaper.Replace(file.fileName)))
		header.Set("Content-Type", mimetype.Detect(file.content).String())

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("create part %q: %w", file.field, err)
		}
		if _, err := part.Write(file.content); err != nil {
			return nil, "", fmt.Errorf("write part %q: %w", file.field, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}
