package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"biliwatch/app/bili"
)

// Sender posts delivery notifications to a DingTalk group robot webhook.
type Sender struct {
	httpClient       *http.Client
	webhookURL       string
	secret           string
	contentMaxLength int
	now              func() time.Time
}

func NewSender(webhookURL, secret string, contentMaxLength int) *Sender {
	if contentMaxLength <= 0 {
		contentMaxLength = 200
	}
	return &Sender{
		httpClient:       &http.Client{Timeout: 10 * time.Second},
		webhookURL:       webhookURL,
		secret:           secret,
		contentMaxLength: contentMaxLength,
		now:              time.Now,
	}
}

// Deliver sends one item as a markdown card. Called at most once per item per
// cycle; a failed delivery is retried only via the next cycle's dedup miss.
func (s *Sender) Deliver(ctx context.Context, item bili.Item) error {
	payload := map[string]interface{}{
		"msgtype": "markdown",
		"markdown": map[string]string{
			"title": s.messageTitle(item),
			"text":  s.messageBody(item),
		},
	}
	return s.post(ctx, payload)
}

// TestConnection sends a plain-text probe so a broken webhook surfaces at
// startup instead of on the first real delivery.
func (s *Sender) TestConnection(ctx context.Context) error {
	payload := map[string]interface{}{
		"msgtype": "text",
		"text": map[string]string{
			"content": "biliwatch 连接测试",
		},
	}
	return s.post(ctx, payload)
}

func (s *Sender) messageTitle(item bili.Item) string {
	name := item.AuthorName
	if name == "" {
		name = "UP主" + item.AuthorID
	}

	switch {
	case item.Kind == bili.KindVideo:
		return fmt.Sprintf("📹 %s 发布了新视频", name)
	case len(item.Images) > 0:
		return fmt.Sprintf("🖼️ %s 发布了图片动态", name)
	default:
		return fmt.Sprintf("🔔 %s 发布了新动态", name)
	}
}

func (s *Sender) messageBody(item bili.Item) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "### %s\n\n", s.messageTitle(item))

	if item.Title != "" {
		fmt.Fprintf(&buf, "**%s**\n\n", item.Title)
	}
	if item.Content != "" {
		fmt.Fprintf(&buf, "%s\n\n", truncate(item.Content, s.contentMaxLength))
	}

	// DingTalk renders at most a handful of inline images cleanly
	for i, img := range item.Images {
		if i >= 3 {
			fmt.Fprintf(&buf, "（共 %d 张图片）\n\n", len(item.Images))
			break
		}
		fmt.Fprintf(&buf, "![](%s)\n\n", img)
	}

	if item.PublishedAt != nil {
		fmt.Fprintf(&buf, "**发布时间**: %s\n\n", item.PublishedAt.Format("2006-01-02 15:04:05"))
	}
	if item.URL != "" {
		fmt.Fprintf(&buf, "[查看详情](%s)", item.URL)
	}

	return buf.String()
}

func (s *Sender) post(ctx context.Context, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.signedURL(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	var result struct {
		ErrCode int    `json:"errcode"`
		ErrMsg  string `json:"errmsg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode webhook response: %w", err)
	}

	if result.ErrCode != 0 {
		return fmt.Errorf("webhook rejected message: code %d: %s", result.ErrCode, result.ErrMsg)
	}

	return nil
}

// signedURL appends the timestamp and hmac-sha256 signature DingTalk expects
// when a robot has a signing secret configured.
func (s *Sender) signedURL() string {
	if s.secret == "" {
		return s.webhookURL
	}

	timestamp := strconv.FormatInt(s.now().UnixMilli(), 10)
	stringToSign := timestamp + "\n" + s.secret

	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(stringToSign))
	sign := url.QueryEscape(base64.StdEncoding.EncodeToString(mac.Sum(nil)))

	return fmt.Sprintf("%s&timestamp=%s&sign=%s", s.webhookURL, timestamp, sign)
}

func truncate(content string, maxLen int) string {
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	return string(runes[:maxLen]) + "..."
}
