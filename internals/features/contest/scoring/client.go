// Package scoring talks to the external transcription/scoring service.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"rumble_backend/internals/metrics"
)

// Page is one uploaded page image.
type Page struct {
	Etag      string
	BlobLabel string
	RawBytes  []byte
}

// Response is the scorer's answer. Numbers are unrounded.
type Response struct {
	Confidence    float64 `json:"Confidence"`
	Rotation      float64 `json:"Rotation"`
	SquadScore    float64 `json:"SquadScore"`
	Transcription string  `json:"Transcription"`

	// Raw is the undecoded body, kept for the transcription side record.
	Raw []byte `json:"-"`
}

type Gateway interface {
	SendSubmission(ctx context.Context, pages []Page, promptID uint) (*Response, error)
}

type pagePayload struct {
	URL      string `json:"URL"`
	Checksum string `json:"Checksum"`
	Data     []byte `json:"Data,omitempty"`
}

type submissionPayload struct {
	SubmissionID string                 `json:"SubmissionID"`
	StoryID      uint                   `json:"StoryId"`
	Pages        map[string]pagePayload `json:"Pages"`
}

// Client posts submissions to <BaseURL>/submission/text. No retries.
type Client struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Log     *logrus.Entry
	Metrics *metrics.Metrics
}

var ErrNoPages = errors.New("scoring: no pages")

func (c *Client) SendSubmission(ctx context.Context, pages []Page, promptID uint) (*Response, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body := submissionPayload{
		SubmissionID: pages[0].Etag,
		StoryID:      promptID,
		Pages:        make(map[string]pagePayload, len(pages)),
	}
	for i, p := range pages {
		body.Pages[strconv.Itoa(i+1)] = pagePayload{URL: p.BlobLabel, Checksum: p.Etag, Data: p.RawBytes}
	}

	timeout := c.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); timeout <= 0 || left < timeout {
			timeout = left
		}
	}

	a := fiber.Post(c.BaseURL + "/submission/text")
	a.JSONEncoder(sonic.Marshal)
	a.Set(fiber.HeaderAuthorization, c.Token)
	a.JSON(body)
	if timeout > 0 {
		a.Timeout(timeout)
	}

	start := time.Now()
	code, raw, errs := a.Bytes()
	c.Metrics.ObserveScoring(time.Since(start).Seconds())

	log := c.Log.WithFields(logrus.Fields{"prompt_id": promptID, "status": code})
	if len(errs) > 0 {
		err := errors.Join(errs...)
		log.WithError(err).Error("scoring request failed")
		return nil, fmt.Errorf("scoring: %w", err)
	}
	if code < 200 || code > 299 {
		log.WithField("body", truncate(raw, 256)).Error("scoring service rejected submission")
		return nil, fmt.Errorf("scoring: unexpected status %d", code)
	}

	var out Response
	if err := sonic.Unmarshal(raw, &out); err != nil {
		log.WithError(err).Error("scoring response undecodable")
		return nil, fmt.Errorf("scoring: decode: %w", err)
	}
	out.Raw = append([]byte(nil), raw...)
	log.Debug("scoring response received")
	return &out, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, pages []Page, promptID uint) (*Response, error)

func (f GatewayFunc) SendSubmission(ctx context.Context, pages []Page, promptID uint) (*Response, error) {
	return f(ctx, pages, promptID)
}
