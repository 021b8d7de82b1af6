// reachout - Contact list and bulk messaging dashboard
// Copyright (C) 2026  reachout contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.

package broadcast

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Validate checks raw and returns the request to execute. Checks run in
// order and stop at the first failure: recipient list shape, recipient
// count, then message body.
func Validate(raw RawRequest) (*Request, error) {
	recipients, err := parseRecipients(raw.Contacts)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, &Error{Kind: ErrEmptyRecipients, Message: msgEmptyRecipients}
	}
	if strings.TrimSpace(raw.Content) == "" && raw.Media == nil {
		return nil, &Error{Kind: ErrEmptyMessage, Message: msgEmptyMessage}
	}
	return &Request{
		Heading:    strings.TrimSpace(raw.Heading),
		Content:    raw.Content,
		Media:      raw.Media,
		Recipients: recipients,
	}, nil
}

// parseRecipients decodes a JSON array of contact objects. A JSON string
// holding the array is unwrapped first, so a JSON body can carry the same
// string a multipart form field does.
func parseRecipients(data []byte) ([]Recipient, error) {
	malformed := &Error{Kind: ErrMalformedPayload, Message: msgMalformed}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, malformed
	}
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, malformed
		}
		data = bytes.TrimSpace([]byte(inner))
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, malformed
	}

	out := make([]Recipient, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			return nil, malformed
		}
		var r Recipient
		if err := json.Unmarshal(item, &r); err != nil {
			return nil, malformed
		}
		r.Name = strings.TrimSpace(r.Name)
		r.Phone = strings.TrimSpace(r.Phone)
		if r.Phone == "" {
			return nil, malformed
		}
		out = append(out, r)
	}
	return out, nil
}
