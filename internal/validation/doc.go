// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

/*
Package validation validates API request structs with go-playground/validator.

A single validator instance is built once and shared. Field names in messages
use the struct's json tag, so a client sees the same name it sent.

Custom tags:

  - policy: a selection policy name accepted by recommend.ParsePolicy
  - printable: no control characters (article ids and titles end up in logs)

Example:

	type CreateUserRequest struct {
	    Name string `json:"name" validate:"required,max=64,printable"`
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
	    apiErr := verr.ToAPIError()
	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
	    return
	}
*/
package validation
