// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apitest

import (
	"encoding/json"
	"net/http"

	"github.com/taibuivan/vizion/internal/platform/apperr"
	"github.com/taibuivan/vizion/internal/platform/constants"
)

// # Envelopes

// successEnvelope is the body of every 2xx answer.
type successEnvelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// errorEnvelope is the body of every non-2xx answer.
type errorEnvelope struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

func writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set(constants.HeaderContentType, "application/json; charset=utf-8")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(payload)
}

func writeOK(writer http.ResponseWriter, message string, data any) {
	writeJSON(writer, http.StatusOK, successEnvelope{Message: message, Data: data})
}

func writeCreated(writer http.ResponseWriter, message string, data any) {
	writeJSON(writer, http.StatusCreated, successEnvelope{Message: message, Data: data})
}

func writeError(writer http.ResponseWriter, status int, code, message string, errs ...apperr.FieldError) {
	writeJSON(writer, status, errorEnvelope{Code: code, Message: message, Errors: errs})
}

// writeValidation answers 400 with the field errors of a client-side style
// validation failure.
func writeValidation(writer http.ResponseWriter, err error) {
	ae := apperr.As(err)
	if ae == nil {
		writeError(writer, http.StatusBadRequest, apperr.CodeValidation, err.Error())
		return
	}
	writeError(writer, http.StatusBadRequest, apperr.CodeValidation, ae.Message, ae.Errors...)
}

func writeUnauthorized(writer http.ResponseWriter, message string) {
	writeError(writer, http.StatusUnauthorized, apperr.CodeUnauthorized, message)
}

func writeNotFound(writer http.ResponseWriter, message string) {
	writeError(writer, http.StatusNotFound, apperr.CodeNotFound, message)
}

func writeInternal(writer http.ResponseWriter) {
	writeError(writer, http.StatusInternalServerError, apperr.CodeInternal, "An unexpected error occurred")
}
