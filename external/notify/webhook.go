package notify

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/motosense/backend/internal/domain/datasync"
	"github.com/motosense/backend/internal/platform/logging"
	"github.com/motosense/backend/internal/platform/resilience"
)

var errWebhookTransient = crerr.New("webhook transient failure")

type WebhookConfig struct {
	URL            string
	Secret         string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// WebhookNotifier POSTs detected critical and high significance changes to a
// configured endpoint so the mobile app backend can fan out push
// notifications. It implements usecase.ChangeNotifier.
type WebhookNotifier struct {
	client         *http.Client
	url            string
	secret         string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewWebhookNotifier(cfg WebhookConfig) (*WebhookNotifier, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	endpoint, err := validateHTTPURL(cfg.URL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid webhook url")
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &WebhookNotifier{
		client:         &http.Client{Timeout: timeout},
		url:            endpoint,
		secret:         strings.TrimSpace(cfg.Secret),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}, nil
}

type webhookPayload struct {
	Changes    []changePayload `json:"changes"`
	NotifiedAt time.Time       `json:"notified_at"`
}

type changePayload struct {
	EntityType   string `json:"entity_type"`
	EntityID     string `json:"entity_id"`
	Type         string `json:"type"`
	Field        string `json:"field,omitempty"`
	OldValue     string `json:"old_value,omitempty"`
	NewValue     string `json:"new_value,omitempty"`
	Significance string `json:"significance"`
	DetectedAt   string `json:"detected_at"`
}

func (n *WebhookNotifier) NotifyChanges(ctx context.Context, items []datasync.Change) error {
	if len(items) == 0 {
		return nil
	}
	if n.circuitEnabled {
		if err := n.breaker.Allow(); err != nil {
			n.logger.WarnContext(ctx, "webhook circuit breaker rejected request", "state", n.breaker.State())
			return fmt.Errorf("change webhook is temporarily unavailable: %w", err)
		}
	}

	payload := webhookPayload{
		Changes:    make([]changePayload, 0, len(items)),
		NotifiedAt: time.Now().UTC(),
	}
	for _, item := range items {
		payload.Changes = append(payload.Changes, changePayload{
			EntityType:   item.EntityType,
			EntityID:     item.EntityID,
			Type:         string(item.Type),
			Field:        item.Field,
			OldValue:     item.OldValue,
			NewValue:     item.NewValue,
			Significance: string(item.Significance),
			DetectedAt:   item.DetectedAt.UTC().Format(time.RFC3339),
		})
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(payload); err != nil {
		return crerr.Wrap(err, "marshal webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(buf.B))
	if err != nil {
		return crerr.Wrap(err, "create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	if n.secret != "" {
		req.Header.Set("Authorization", "Bearer "+n.secret)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		callErr := fmt.Errorf("%w: post change webhook url=%s: %v", errWebhookTransient, n.url, err)
		n.recordCircuitResult(callErr)
		return callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		callErr := fmt.Errorf("post change webhook status=%d url=%s body=%s", resp.StatusCode, n.url, strings.TrimSpace(string(raw)))
		if isWebhookRetryableStatus(resp.StatusCode) {
			callErr = fmt.Errorf("%w: %v", errWebhookTransient, callErr)
		}
		n.recordCircuitResult(callErr)
		return callErr
	}

	n.logger.InfoContext(ctx, "change webhook delivered", "change_count", len(items))
	n.recordCircuitResult(nil)
	return nil
}

func (n *WebhookNotifier) recordCircuitResult(err error) {
	if !n.circuitEnabled || n.breaker == nil {
		return
	}
	if err != nil && stderrors.Is(err, errWebhookTransient) {
		n.breaker.RecordFailure()
		return
	}
	n.breaker.RecordSuccess()
}

func isWebhookRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

func validateHTTPURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return candidate, nil
}
