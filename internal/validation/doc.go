// FocusGuard - Interview Proctoring and Anomaly Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/focusguard

/*
Package validation validates API request bodies with go-playground/validator.

A single validator instance is shared process-wide. Besides the stock tags it
registers two domain rules:

  - objectid: a 24-character hexadecimal session or event ID
  - eventtype: one of info, warning, alert, success

Field names in error messages use the JSON name of the field, so a failure
on SessionID reads "sessionId is required".

Usage:

	type EndSessionRequest struct {
		SessionID string `json:"sessionId" validate:"required,objectid"`
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		// verr.Error() joins every field message
	}
*/
package validation
