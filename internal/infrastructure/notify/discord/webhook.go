package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-resty/resty/v2"

	"binflip/internal/application/port"
	"binflip/internal/domain/model"
)

const embedColorRed = 0xff0000

// Webhook posts flip alerts to a Discord webhook URL. Rate limits and 5xx
// responses get a couple of retries; anything still failing is reported to
// the dispatcher, which logs and moves on.
type Webhook struct {
	url      string
	mentions []string
	http     *resty.Client
}

func NewWebhook(url string, mentions []string) *Webhook {
	c := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= 500 || r.StatusCode() == 429
		})
	return &Webhook{url: url, mentions: mentions, http: c}
}

func (w *Webhook) Name() string { return "discord" }

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Fields      []embedField `json:"fields"`
}

type allowedMentions struct {
	Users []string `json:"users"`
	Parse []string `json:"parse"`
}

type webhookPayload struct {
	Content         string          `json:"content,omitempty"`
	AllowedMentions allowedMentions `json:"allowed_mentions"`
	Embeds          []embed         `json:"embeds"`
}

func (w *Webhook) Notify(ctx context.Context, ev model.FlipEvent) error {
	delaySec := float64(ev.DetectedAt-ev.SnapshotTs) / 1000

	var content strings.Builder
	for i, id := range w.mentions {
		if i > 0 {
			content.WriteByte(' ')
		}
		fmt.Fprintf(&content, "<@%s>", id)
	}

	payload := webhookPayload{
		Content:         content.String(),
		AllowedMentions: allowedMentions{Users: w.mentions, Parse: []string{"everyone"}},
		Embeds: []embed{{
			Title:       "Flip found !",
			Description: ev.Cheapest.RawName,
			Color:       embedColorRed,
			Fields: []embedField{
				{Name: "Lowest BIN :", Value: humanize.Comma(ev.Cheapest.Price), Inline: true},
				{Name: "Second lowest BIN :", Value: humanize.Comma(ev.Second.Price), Inline: true},
				{Name: "Delay :", Value: fmt.Sprintf("%.1fs", delaySec)},
				{Name: "Auction :", Value: ev.Reference()},
			},
		}},
	}

	resp, err := w.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(w.url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("discord webhook: %d %s", resp.StatusCode(), resp.String())
	}
	return nil
}

var _ port.Notifier = (*Webhook)(nil)
