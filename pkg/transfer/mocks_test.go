package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
)

// --- Mocks ---

type mockHTTPClient struct {
	httpkit.ClientInterface
	data  []byte
	err   error
	calls int
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.calls++
	return m.data, m.err
}

type mockCache struct {
	data map[string]any
}

func (m *mockCache) Get(key string) (any, bool) {
	val, ok := m.data[key]
	return val, ok
}

func (m *mockCache) Set(key string, value any, d time.Duration) {
	if m.data == nil {
		m.data = make(map[string]any)
	}
	m.data[key] = value
}

func staticResolver(ip string) IPResolver {
	return func(host string) ([]net.IP, error) {
		return []net.IP{net.ParseIP(ip)}, nil
	}
}

// mockInputReader は URI ごとの内容を返す InputReader です。
type mockInputReader struct {
	files  map[string][]byte
	opened []string
}

func (m *mockInputReader) Open(ctx context.Context, filePath string) (io.ReadCloser, error) {
	m.opened = append(m.opened, filePath)
	data, ok := m.files[filePath]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *mockInputReader) List(ctx context.Context, path string, callback func(filePath string) error) error {
	for p := range m.files {
		if err := callback(p); err != nil {
			return err
		}
	}
	return nil
}

// mockOutputWriter は書き込まれた内容を URI ごとに保持する OutputWriter です。
type mockOutputWriter struct {
	written      map[string][]byte
	contentTypes map[string]string
	err          error
}

func (m *mockOutputWriter) Write(ctx context.Context, uri string, contentReader io.Reader, contentType string) error {
	if m.err != nil {
		return m.err
	}
	data, err := io.ReadAll(contentReader)
	if err != nil {
		return err
	}
	if m.written == nil {
		m.written = make(map[string][]byte)
		m.contentTypes = make(map[string]string)
	}
	m.written[uri] = data
	m.contentTypes[uri] = contentType
	return nil
}
