package cache

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// respServer speaks enough RESP2 for RedisCache: HELLO is unknown, GET misses, SCAN
// returns one key and DEL is refused.
func respServer(t *testing.T, key string) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go serveRESP(conn, key)
		}
	}()
	return ln.Addr().String()
}

func serveRESP(conn net.Conn, key string) {
	defer conn.Close()
	rd := bufio.NewReader(conn)

	for {
		args, err := readCommand(rd)
		if err != nil {
			return
		}

		var reply string
		switch strings.ToUpper(args[0]) {
		case "HELLO":
			reply = "-ERR unknown command 'HELLO'\r\n"
		case "PING":
			reply = "+PONG\r\n"
		case "GET":
			reply = "$-1\r\n"
		case "SCAN":
			reply = fmt.Sprintf("*2\r\n$1\r\n0\r\n*1\r\n$%d\r\n%s\r\n", len(key), key)
		case "DEL":
			reply = "-ERR del refused\r\n"
		default:
			reply = "+OK\r\n"
		}
		if _, err := io.WriteString(conn, reply); err != nil {
			return
		}
	}
}

func readCommand(rd *bufio.Reader) ([]string, error) {
	line, err := rd.ReadString('\n')
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "*")))
	if err != nil || n < 1 {
		return nil, fmt.Errorf("bad command header %q", line)
	}

	args := make([]string, 0, n)
	for i := 0; i < n; i++ {
		header, err := rd.ReadString('\n')
		if err != nil {
			return nil, err
		}
		size, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(header, "$")))
		if err != nil {
			return nil, err
		}
		buf := make([]byte, size+2)
		if _, err := io.ReadFull(rd, buf); err != nil {
			return nil, err
		}
		args = append(args, string(buf[:size]))
	}
	return args, nil
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func captureLogs(t *testing.T) *syncBuffer {
	t.Helper()
	out := &syncBuffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(out, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return out
}

func TestRedisCache_MissIsQuietAndFailedDeletesAreLogged(t *testing.T) {
	addr := respServer(t, "storefront:catalog:products")
	rdb := redis.NewClient(&redis.Options{
		Addr:            addr,
		Protocol:        2,
		DisableIdentity: true,
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	c := NewRedisCache(rdb, RedisConfig{TTL: time.Minute})
	logs := captureLogs(t)
	ctx := context.Background()

	_, ok := c.Get(ctx, "catalog:products")
	assert.False(t, ok)
	assert.NotContains(t, logs.String(), "cache_get_failed")

	c.DeletePrefix(ctx, "catalog:")
	assert.Contains(t, logs.String(), "cache_delete_prefix_failed")
	assert.Contains(t, logs.String(), "del refused")
}
