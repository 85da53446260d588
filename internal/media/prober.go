package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pressmapapp/pressmap-server/internal/domain"
	"github.com/pressmapapp/pressmap-server/internal/ratelimit"
)

const (
	fetchTimeout = 20 * time.Second

	// maxImageBytes bounds the download; originals past this size are
	// skipped rather than streamed into memory.
	maxImageBytes = 32 << 20

	// One bucket per host so a site on a slow CDN doesn't get hammered.
	fetchRPS   = 2.0
	fetchBurst = 2
)

// Prober fetches image attachments and computes their BlurHash.
type Prober struct {
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// NewProber creates a media prober.
func NewProber(logger *slog.Logger) *Prober {
	return &Prober{
		http: &http.Client{
			Timeout: fetchTimeout,
		},
		limiter: ratelimit.New(fetchRPS, fetchBurst),
		logger:  logger,
	}
}

// isProbeable reports whether the attachment is a fetchable image.
func isProbeable(a *domain.Attachment) bool {
	return strings.HasPrefix(a.MimeType, "image/") && a.URL != ""
}

// Probe computes the BlurHash for one attachment, fetching the original
// over HTTP. Non-image attachments return an empty hash without error.
func (p *Prober) Probe(ctx context.Context, a *domain.Attachment) (string, error) {
	if !isProbeable(a) {
		return "", nil
	}

	if err := p.limiter.Wait(ctx, hostOf(a.URL)); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "PressMap/1.0")

	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", a.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", a.URL, resp.StatusCode)
	}

	hash, err := ComputeBlurHash(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", a.URL, err)
	}
	return hash, nil
}

func hostOf(rawURL string) string {
	// Good enough for bucketing; a malformed URL shares one bucket.
	rest := rawURL
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
