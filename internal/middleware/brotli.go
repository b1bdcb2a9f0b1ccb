package middleware

import (
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// BrotliConfig tunes the Brotli middleware.
type BrotliConfig struct {
	// Quality is the brotli level, 0 to 11.
	Quality int
	// MinLength is the body size from which responses are compressed.
	MinLength int
	// Skip excludes extra requests from compression.
	Skip func(c *gin.Context) bool
}

// DefaultBrotliConfig compresses bodies of 1 KiB and more at the default level.
var DefaultBrotliConfig = BrotliConfig{
	Quality:   brotli.DefaultCompression,
	MinLength: 1024,
}

// Brotli compresses responses for clients that accept "br".
func Brotli() gin.HandlerFunc {
	return BrotliWithConfig(DefaultBrotliConfig)
}

// BrotliWithConfig is Brotli with custom settings.
func BrotliWithConfig(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < brotli.BestSpeed || cfg.Quality > brotli.BestCompression {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultBrotliConfig.MinLength
	}

	return func(c *gin.Context) {
		if isStreaming(c) || (cfg.Skip != nil && cfg.Skip(c)) || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")
		w := &brotliWriter{ResponseWriter: c.Writer, quality: cfg.Quality, minLength: cfg.MinLength}
		c.Writer = w
		defer func() {
			if err := w.finish(); err != nil {
				_ = c.Error(err)
			}
		}()
		c.Next()
	}
}

// brotliWriter holds the body back until it knows whether the response is
// large enough to compress, then either streams through an encoder or
// writes plain.
type brotliWriter struct {
	gin.ResponseWriter
	quality   int
	minLength int

	pending []byte
	decided bool
	enc     *brotli.Writer
}

func (w *brotliWriter) Write(p []byte) (int, error) {
	if w.decided {
		return w.out(p)
	}
	w.pending = append(w.pending, p...)
	if len(w.pending) < w.minLength {
		return len(p), nil
	}
	if err := w.decide(true); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *brotliWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Flush commits to plain output if nothing was compressed yet.
func (w *brotliWriter) Flush() {
	if !w.decided {
		_ = w.decide(false)
	}
	if w.enc != nil {
		_ = w.enc.Flush()
	}
	w.ResponseWriter.Flush()
}

func (w *brotliWriter) finish() error {
	if !w.decided {
		return w.decide(false)
	}
	if w.enc != nil {
		return w.enc.Close()
	}
	return nil
}

// decide picks plain or compressed output and writes the held-back body.
func (w *brotliWriter) decide(compress bool) error {
	w.decided = true
	h := w.ResponseWriter.Header()
	if compress && h.Get("Content-Encoding") == "" {
		h.Set("Content-Encoding", "br")
		h.Del("Content-Length")
		w.enc = brotli.NewWriterLevel(w.ResponseWriter, w.quality)
	}

	body := w.pending
	w.pending = nil
	if len(body) == 0 {
		return nil
	}
	_, err := w.out(body)
	return err
}

func (w *brotliWriter) out(p []byte) (int, error) {
	if w.enc != nil {
		return w.enc.Write(p)
	}
	return w.ResponseWriter.Write(p)
}

// isStreaming reports SSE and WebSocket requests, which must not be buffered.
func isStreaming(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/event-stream") ||
		strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if strings.EqualFold(name, "br") {
			return true
		}
	}
	return false
}
