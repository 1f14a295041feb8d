/*
	Copyright 2025 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package handlers

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is an error whose message may be shown to clients, along with
// the HTTP status it should be reported with.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Error %d: %s", e.Code, e.Message)
}

// NewStatusError returns a new StatusError.
func NewStatusError(code int, format string, args ...any) *StatusError {
	return &StatusError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// StatusOf returns the HTTP status err should be reported with:  its own if
// it is or wraps a StatusError, and http.StatusInternalServerError otherwise.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return http.StatusInternalServerError
}

// writeError reports err on w with its status.
func writeError(w http.ResponseWriter, prefix string, err error) {
	http.Error(w, prefix+": "+err.Error(), StatusOf(err))
}
