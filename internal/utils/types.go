package utils

import "time"

type HTTPClientConfig struct {
	Timeout   time.Duration
	KATimeout time.Duration
	UserAgent string
	Referer   string
	SessData  string // bilibili session cookie; empty for anonymous access
	Headers   map[string]string
}

const ToolUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36"

const TempDirName = ".bbdl-temp"
