package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient は検証フロークライアントのバックエンド呼び出し用に
// 設定されたHTTPクライアントを作成します。
//
// http.DefaultClientにはタイムアウトがないため、常にこのクライアントを
// 使用すること。全体のタイムアウトは呼び出し元から渡し、接続確立と
// TLSハンドシェイクには個別の短い上限を設けています。
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		// 呼び出し先は単一バックエンドのため控えめなプールで足りる
		MaxIdleConns:        20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
