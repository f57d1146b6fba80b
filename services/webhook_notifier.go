package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"football-analytics/logger"
)

// WebhookNotifier 运维通知器，向配置的 webhook 推送服务事件
// 未配置 URL 时所有调用均为空操作
type WebhookNotifier struct {
	webhookURL string
	client     *http.Client
	enabled    bool
}

func NewWebhookNotifier(webhookURL string) *WebhookNotifier {
	enabled := webhookURL != ""
	if enabled {
		logger.Printf("[Notifier] Initialized with webhook")
	} else {
		logger.Printf("[Notifier] Disabled (no webhook URL)")
	}

	return &WebhookNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		enabled:    enabled,
	}
}

// notifierEvent webhook 消息体
type notifierEvent struct {
	Event     string `json:"event"`
	Service   string `json:"service"`
	Detail    string `json:"detail,omitempty"`
	Timestamp string `json:"timestamp"`
}

// NotifyServiceStart 推送服务启动事件
func (n *WebhookNotifier) NotifyServiceStart(environment string) error {
	return n.send("service_started", fmt.Sprintf("environment=%s", environment))
}

// NotifyError 推送错误事件
func (n *WebhookNotifier) NotifyError(component, detail string) error {
	return n.send("error", fmt.Sprintf("[%s] %s", component, detail))
}

func (n *WebhookNotifier) send(event, detail string) error {
	if !n.enabled {
		return nil
	}

	payload := notifierEvent{
		Event:     event,
		Service:   "football-analytics",
		Detail:    detail,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	resp, err := n.client.Post(n.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
