package utils

import (
	"net/http"
	"time"
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type HTTPClient struct {
	client *http.Client
	config HTTPClientConfig
}

func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.KATimeout == 0 {
		cfg.KATimeout = 60 * time.Second
	}
	transport := &http.Transport{
		IdleConnTimeout:     cfg.KATimeout,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		DisableCompression:  true,
	}
	return &HTTPClient{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		config: cfg,
	}
}

func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	} else {
		req.Header.Set("User-Agent", ToolUserAgent)
	}
	if c.config.Referer != "" && req.Header.Get("Referer") == "" {
		req.Header.Set("Referer", c.config.Referer)
	}
	if c.config.SessData != "" {
		req.Header.Set("Cookie", "SESSDATA="+c.config.SessData)
	}
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}
	return c.client.Do(req)
}
