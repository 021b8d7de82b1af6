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

package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const telnyxMessagesURL = "https://api.telnyx.com/v2/messages"

// Sender is the interface any SMS provider must implement. Both the
// in-process SenderBackend and the outbox Consumer dispatch through it.
type Sender interface {
	Send(ctx context.Context, msg OutboundMessage) error
}

// TelnyxSender sends text messages through the Telnyx REST API over plain
// net/http. Attachments are not forwarded; Telnyx MMS needs publicly hosted
// media URLs.
type TelnyxSender struct {
	apiKey     string
	fromNumber string
	endpoint   string
	httpClient *http.Client
}

// NewTelnyxSender creates a TelnyxSender.
//
// apiKey is the Telnyx API v2 key (starts with "KEY...").
// fromNumber is the Telnyx-provisioned number in E.164 format.
func NewTelnyxSender(apiKey, fromNumber string) *TelnyxSender {
	return &TelnyxSender{
		apiKey:     apiKey,
		fromNumber: fromNumber,
		endpoint:   telnyxMessagesURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SetEndpoint points the sender at a different messages URL.
func (s *TelnyxSender) SetEndpoint(url string) {
	s.endpoint = url
}

type telnyxRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
}

// telnyxResponse captures just the fields we care about.
type telnyxResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
	Errors []struct {
		Code   string `json:"code"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// Send dispatches msg to Telnyx. It fails on transport errors, non-2xx
// statuses, and 2xx bodies that still carry an errors array.
func (s *TelnyxSender) Send(ctx context.Context, msg OutboundMessage) error {
	body, err := json.Marshal(telnyxRequest{
		From: s.fromNumber,
		To:   msg.To,
		Text: msg.Body,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telnyx returned %d: %s", resp.StatusCode, string(respBody))
	}

	var telResp telnyxResponse
	if err := json.Unmarshal(respBody, &telResp); err == nil && len(telResp.Errors) > 0 {
		return fmt.Errorf("telnyx error %s: %s", telResp.Errors[0].Code, telResp.Errors[0].Detail)
	}
	return nil
}
