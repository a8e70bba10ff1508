package transfer

import (
	"fmt"
	"net"
	"net/url"
)

// IPResolver はホスト名を IP アドレスに解決します。
type IPResolver func(host string) ([]net.IP, error)

// IsSafeURL は SSRF 対策として URL を検証します。
// スキームが http/https であり、解決先にプライベートやループバックのアドレスが含まれないことを確認します。
func IsSafeURL(rawURL string, resolve IPResolver) (bool, error) {
	if resolve == nil {
		resolve = net.LookupIP
	}

	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return false, fmt.Errorf("URLパース失敗: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return false, fmt.Errorf("不許可スキーム: %s", parsedURL.Scheme)
	}

	ips, err := resolve(parsedURL.Hostname())
	if err != nil {
		return false, fmt.Errorf("ホスト '%s' の名前解決に失敗しました: %w", parsedURL.Hostname(), err)
	}

	for _, ip := range ips {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
			return false, fmt.Errorf("制限されたネットワークへのアクセスを検知: %s", ip.String())
		}
	}

	return true, nil
}
