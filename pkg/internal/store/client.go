// Package store 是记录存储 API 的 HTTP 客户端. 每个信封在发送前都会校验，响应统一归一化为 envelope.Result.
package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/storeclient/pkg/configs"
	"github.com/yeisme/storeclient/pkg/internal/envelope"
	"github.com/yeisme/storeclient/pkg/internal/types"
	nlog "github.com/yeisme/storeclient/pkg/log"
	"github.com/yeisme/storeclient/pkg/metrics"
	"github.com/yeisme/storeclient/pkg/tracing"
)

// HeaderRequestID 请求标识头.
const HeaderRequestID = "X-Request-ID"

// maxResponseBytes 响应体读取上限.
const maxResponseBytes = 64 << 20

// Client 存储 API 客户端.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option 配置 Client.
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient 创建客户端.
func NewClient(cfg configs.StoreConfig, opts ...Option) *Client {
	timeout := cfg.GetTimeoutDuration()
	if timeout <= 0 {
		timeout = configs.DefaultStoreTimeout * time.Second
	}

	c := &Client{
		baseURL:    cfg.GetBaseURL(),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL 返回存储 API 基础地址.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL 返回信封对应的完整请求地址.
func (c *Client) URL(env types.Envelope) string {
	return c.baseURL + env.Path()
}

// Send 校验并发送信封. 返回的 Result 总是可用；失败时 error 为 *envelope.Error.
func (c *Client) Send(ctx context.Context, env types.Envelope) (envelope.Result, error) {
	res, err := c.do(ctx, env)
	if err != nil {
		return res, err
	}

	return res, res.Err(env.Operation)
}

// Probe 校验并发送信封，返回包括请求和原始响应在内的完整结果. 只有校验或网络失败才返回 error，
// 非 2xx 与 success=false 体现在结果中.
func (c *Client) Probe(ctx context.Context, env types.Envelope) (types.ProbeOutcome, error) {
	out := types.ProbeOutcome{URL: c.URL(env), Method: http.MethodPost, Request: &env}

	res, err := c.do(ctx, env)
	if err != nil && res.Status == 0 {
		return out, err
	}

	out.Status = res.Status
	out.StatusText = http.StatusText(res.Status)
	out.Records = res.Records

	if res.Body != nil {
		out.Response = res.Body
	} else {
		out.Response = res.Raw
	}

	return out, nil
}

// do 执行一次请求. 校验失败和网络错误返回 error；收到响应时 error 为 nil，由 Result 描述结果.
func (c *Client) do(ctx context.Context, env types.Envelope) (res envelope.Result, err error) {
	op := env.Operation
	start := time.Now()

	ctx, span := tracing.StartSpan(ctx, "store."+string(op), trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("store.operation", string(op)),
		attribute.String("store.file_type", env.FileType),
		attribute.Int("store.where_count", len(env.Where)),
	)

	defer func() {
		outcome := "success"

		switch {
		case err != nil:
			outcome = string(envelope.KindOf(err))
		case !res.Success:
			outcome = string(res.Failure)
		}

		metrics.StoreRequests.WithLabelValues(string(op), outcome).Inc()
		metrics.StoreRequestDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())

		if err == nil && !res.Success {
			tracing.EndSpan(span, res.Err(op))
		} else {
			tracing.EndSpan(span, err)
		}
	}()

	if err = envelope.Validate(env); err != nil {
		return envelope.Result{}, err
	}

	payload, err := sonic.Marshal(env)
	if err != nil {
		return envelope.Result{}, &envelope.Error{Kind: envelope.KindValidation, Op: op, Message: "encode envelope", Err: err}
	}

	requestID := uuid.NewString()
	logger := nlog.Logger().With().Str("operation", string(op)).Str("request_id", requestID).Logger()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(env), bytes.NewReader(payload))
	if err != nil {
		return envelope.Result{}, &envelope.Error{Kind: envelope.KindTransport, Op: op, Message: "create request", Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("User-Agent", "storeclient/"+configs.AppVersion)

	logger.Debug().Str("url", req.URL.String()).Int("bytes", len(payload)).Msg("sending store request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn().Err(err).Msg("store request failed")
		return envelope.Result{}, &envelope.Error{Kind: envelope.KindTransport, Op: op, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return envelope.Result{Status: resp.StatusCode},
			&envelope.Error{Kind: envelope.KindTransport, Op: op, Message: fmt.Sprintf("read response (status %d)", resp.StatusCode), Err: err}
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	res = envelope.Normalize(resp.StatusCode, body)

	logger.Debug().
		Int("status", resp.StatusCode).
		Bool("success", res.Success).
		Int("records", len(res.Records)).
		Dur("elapsed", time.Since(start)).
		Msg("store response")

	return res, nil
}
