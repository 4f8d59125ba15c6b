// Package social uploads rendered clips to social platforms by driving their
// web upload pages in a headless Chrome.
package social

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"clipz-ai/internal/types"
	"clipz-ai/log"
	apperrors "clipz-ai/pkg/errors"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Supported reports whether uploads to platform are automated.
func Supported(platform types.Platform) bool {
	switch platform {
	case types.PlatformTiktok, types.PlatformInstagram, types.PlatformYoutube:
		return true
	default:
		return false
	}
}

type Options struct {
	Headless   bool
	ChromePath string
	Timeout    time.Duration
	// Settle is the pause between page steps while uploads process.
	Settle time.Duration
}

type browseFunc func(ctx context.Context, cookies []Cookie, actions []chromedp.Action) error

type Publisher struct {
	store  *CookieStore
	opts   Options
	logger *zap.Logger
	browse browseFunc
}

var _ types.Publisher = (*Publisher)(nil)

func NewPublisher(store *CookieStore, opts Options) *Publisher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Minute
	}
	if opts.Settle <= 0 {
		opts.Settle = 5 * time.Second
	}
	p := &Publisher{
		store:  store,
		opts:   opts,
		logger: log.WithComponent("social"),
	}
	p.browse = p.runBrowser
	return p
}

func (p *Publisher) Publish(ctx context.Context, req types.PublishRequest) (types.PublishResult, error) {
	if !Supported(req.Platform) {
		return types.PublishResult{}, apperrors.WrapWithDetail(apperrors.CodeUnsupportedPlatform,
			apperrors.ErrUnsupportedPlatform.Message, string(req.Platform), nil)
	}
	absPath, err := filepath.Abs(req.VideoPath)
	if err != nil {
		return types.PublishResult{}, apperrors.Wrap(apperrors.CodeFileNotFound, apperrors.ErrFileNotFound.Message, err)
	}
	if _, err = os.Stat(absPath); err != nil {
		return types.PublishResult{}, apperrors.Wrap(apperrors.CodeFileNotFound, apperrors.ErrFileNotFound.Message, err)
	}
	cookies, err := p.store.Load(req.Platform)
	if err != nil {
		return types.PublishResult{}, err
	}

	p.logger.Info("publishing clip", zap.String("platform", string(req.Platform)), zap.String("video", absPath))
	if err = p.browse(ctx, cookies, p.uploadActions(req, absPath)); err != nil {
		p.logger.Error("browser automation failed", zap.String("platform", string(req.Platform)), zap.Error(err))
		return types.PublishResult{}, apperrors.Wrap(apperrors.CodePublishFailed, apperrors.ErrPublishFailed.Message, err)
	}
	return types.PublishResult{
		Success: true,
		Message: fmt.Sprintf("Video uploaded to %s successfully", displayName(req.Platform)),
	}, nil
}

func displayName(platform types.Platform) string {
	switch platform {
	case types.PlatformTiktok:
		return "TikTok"
	case types.PlatformInstagram:
		return "Instagram"
	case types.PlatformYoutube:
		return "YouTube Shorts"
	default:
		return string(platform)
	}
}

// uploadActions is the page script for each platform's upload form.
func (p *Publisher) uploadActions(req types.PublishRequest, videoPath string) []chromedp.Action {
	settle := chromedp.Sleep(p.opts.Settle)
	files := []string{videoPath}

	switch req.Platform {
	case types.PlatformTiktok:
		return []chromedp.Action{
			chromedp.Navigate("https://www.tiktok.com/upload"),
			settle,
			chromedp.SetUploadFiles(`input[type="file"]`, files, chromedp.ByQuery),
			settle,
			chromedp.SendKeys(`[data-e2e="video-caption"]`, req.Caption, chromedp.NodeVisible),
			chromedp.Click(`[data-e2e="publish-button"]`, chromedp.NodeVisible),
			settle,
		}
	case types.PlatformInstagram:
		return []chromedp.Action{
			chromedp.Navigate("https://www.instagram.com/"),
			settle,
			chromedp.Click(`[aria-label="New post"]`, chromedp.NodeVisible),
			chromedp.SetUploadFiles(`input[type="file"]`, files, chromedp.ByQuery),
			settle,
			chromedp.SendKeys(`[aria-label="Write a caption..."]`, req.Caption, chromedp.NodeVisible),
			chromedp.Click(`[type="submit"]`, chromedp.NodeVisible),
			settle,
		}
	case types.PlatformYoutube:
		return []chromedp.Action{
			chromedp.Navigate("https://studio.youtube.com/"),
			settle,
			chromedp.Click(`#create-icon-button`, chromedp.NodeVisible),
			chromedp.Click(`#text-item-0`, chromedp.NodeVisible),
			chromedp.SetUploadFiles(`input[type="file"]`, files, chromedp.ByQuery),
			settle,
			chromedp.SendKeys(`#textbox`, req.Title, chromedp.NodeVisible),
			chromedp.SendKeys(`#textbox`, req.Caption, chromedp.NodeVisible),
			chromedp.Click(`#publish-button`, chromedp.NodeVisible),
			settle,
		}
	default:
		return nil
	}
}

func (p *Publisher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", p.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	if p.opts.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(p.opts.ChromePath))
	}
	return opts
}

func (p *Publisher) runBrowser(ctx context.Context, cookies []Cookie, actions []chromedp.Action) error {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, p.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, p.opts.Timeout)
	defer cancelTimeout()

	all := append([]chromedp.Action{setCookies(cookies)}, actions...)
	return chromedp.Run(browserCtx, all...)
}

func setCookies(cookies []Cookie) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range cookies {
			params := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(c.Path).
				WithHTTPOnly(c.HttpOnly).
				WithSecure(c.Secure).
				WithSameSite(sameSite(c.SameSite))
			if c.Expires > 0 {
				expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
				params = params.WithExpires(&expires)
			}
			if err := params.Do(ctx); err != nil {
				return fmt.Errorf("set cookie %s: %w", c.Name, err)
			}
		}
		return nil
	})
}

func sameSite(s string) network.CookieSameSite {
	switch s {
	case "Strict", "strict":
		return network.CookieSameSiteStrict
	case "None", "no_restriction":
		return network.CookieSameSiteNone
	default:
		return network.CookieSameSiteLax
	}
}
