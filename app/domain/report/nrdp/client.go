// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package nrdp submits passive check results to a Nagios Remote Data
// Processor endpoint over HTTP.
package nrdp

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	config "github.com/cloudzero/drbdmon/app/config/drbdmon"
	"github.com/cloudzero/drbdmon/app/domain/report"
)

var (
	// ErrRejected is returned when the endpoint answers but refuses the result.
	ErrRejected = errors.New("nrdp rejected the result")
	// ErrHTTP is returned for non-2xx responses.
	ErrHTTP = errors.New("nrdp http error")
)

// Client posts one result per request. Requests are never retried.
type Client struct {
	url   string
	token string
	http  *retryablehttp.Client
}

var _ report.Submitter = (*Client)(nil)

// NewClient creates a client from validated monitor settings.
func NewClient(ctx context.Context, cfg config.Monitor) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.Logger = NewZerologRetryableHTTPAdapter(log.Ctx(ctx))
	httpClient.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	httpClient.RetryMax = 0
	httpClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{url: cfg.NRDPURL, token: cfg.NRDPToken, http: httpClient}
}

type checkResult struct {
	CheckResult struct {
		Type      string `json:"type"`
		CheckType string `json:"checktype"`
	} `json:"checkresult"`
	Hostname    string `json:"hostname"`
	ServiceName string `json:"servicename"`
	State       string `json:"state"`
	Output      string `json:"output"`
}

type submitData struct {
	CheckResults []checkResult `json:"checkresults"`
}

type result struct {
	Status  int    `xml:"status" json:"status"`
	Message string `xml:"message" json:"message"`
}

// Submit posts s as a passive service check.
func (c *Client) Submit(ctx context.Context, s report.Submission) error {
	cr := checkResult{
		Hostname:    s.Host,
		ServiceName: s.Service,
		State:       strconv.Itoa(s.Status),
		Output:      s.Output,
	}
	cr.CheckResult.Type = "service"
	cr.CheckResult.CheckType = "1"

	data, err := json.Marshal(submitData{CheckResults: []checkResult{cr}})
	if err != nil {
		return fmt.Errorf("encode check result: %w", err)
	}

	form := url.Values{}
	form.Set("cmd", "submitcheck")
	form.Set("token", c.token)
	form.Set("JSONDATA", string(data))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post to %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %s", ErrHTTP, resp.Status)
	}

	res, err := parseResult(body)
	if err != nil {
		return err
	}
	if res.Status != 0 {
		return fmt.Errorf("%w: status %d: %s", ErrRejected, res.Status, res.Message)
	}

	log.Ctx(ctx).Debug().Str("url", c.url).Str("message", res.Message).Msg("nrdp result accepted")
	return nil
}

// parseResult accepts both the XML and the JSON response formats.
func parseResult(body []byte) (result, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapper struct {
			Result result `json:"result"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return result{}, fmt.Errorf("decode json response: %w", err)
		}
		return wrapper.Result, nil
	}

	var res result
	if err := xml.Unmarshal(trimmed, &res); err != nil {
		return result{}, fmt.Errorf("decode xml response: %w", err)
	}
	return res, nil
}
