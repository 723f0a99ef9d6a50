// Package egress 查询调用方的公网出口地址，用于填充记录的 upload_ip 字段.
//
// 查询服务按顺序尝试，每次尝试有独立的超时，全部失败时返回配置的默认地址. 查询不会向调用方返回错误.
package egress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/yeisme/storeclient/pkg/configs"
)

// maxBodyBytes 查询服务响应体的读取上限.
const maxBodyBytes = 4 << 10

// ErrInvalidAddress 查询服务返回的内容不是合法的 IP 地址.
var ErrInvalidAddress = errors.New("invalid address")

// Provider 单个出口地址查询服务.
type Provider interface {
	Name() string
	Lookup(ctx context.Context) (string, error)
}

// Adapter 从响应体中提取地址.
type Adapter func(body []byte) (string, error)

// TextAdapter 响应体即地址，去掉首尾空白.
func TextAdapter(body []byte) (string, error) {
	return checkAddress(strings.TrimSpace(string(body)))
}

// JSONAdapter 从 JSON 对象的 field 字段读取地址.
func JSONAdapter(field string) Adapter {
	return func(body []byte) (string, error) {
		node, err := sonic.Get(body, field)
		if err != nil {
			return "", fmt.Errorf("read field %q: %w", field, err)
		}

		s, err := node.String()
		if err != nil {
			return "", fmt.Errorf("field %q is not a string: %w", field, err)
		}

		return checkAddress(strings.TrimSpace(s))
	}
}

func checkAddress(s string) (string, error) {
	if net.ParseIP(s) == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	return s, nil
}

// HTTPProvider 通过 GET 请求查询地址的服务.
type HTTPProvider struct {
	name    string
	url     string
	adapter Adapter
	client  *http.Client
}

// NewHTTPProvider 创建 HTTPProvider. client 为 nil 时使用 http.DefaultClient.
func NewHTTPProvider(name, url string, adapter Adapter, client *http.Client) *HTTPProvider {
	if client == nil {
		client = http.DefaultClient
	}

	if name == "" {
		name = url
	}

	return &HTTPProvider{name: name, url: url, adapter: adapter, client: client}
}

// ProvidersFromConfig 按配置顺序创建查询服务.
func ProvidersFromConfig(list []configs.EgressProvider, client *http.Client) []Provider {
	out := make([]Provider, 0, len(list))

	for _, p := range list {
		adapter := TextAdapter
		if p.Format == "json" {
			field := p.Field
			if field == "" {
				field = "ip"
			}

			adapter = JSONAdapter(field)
		}

		out = append(out, NewHTTPProvider(p.Name, p.URL, adapter, client))
	}

	return out
}

// Name 返回服务名称.
func (p *HTTPProvider) Name() string {
	return p.name
}

// Lookup 查询地址.
func (p *HTTPProvider) Lookup(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("http %d", resp.StatusCode)
	}

	return p.adapter(body)
}
