// Package browse 将 resolver 的结果映射为 HTTP 响应：JSON 渲染、302 跳转
// 或带错误码的 JSON 错误体。
package browse

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/any-index/any-index/internal/drive"
	"github.com/any-index/any-index/internal/logging"
	"github.com/any-index/any-index/internal/metrics"
	"github.com/any-index/any-index/internal/preview"
	"github.com/any-index/any-index/internal/resolver"
	"github.com/any-index/any-index/internal/server"
)

// NoticeHeader 携带 TooLarge 等非致命提示。
const NoticeHeader = "X-Any-Index-Notice"

// Resolver 由 resolver.Resolver 实现。
type Resolver interface {
	Resolve(ctx context.Context, req resolver.Request) (*resolver.Result, error)
}

// Handler 实现 server.BrowseHandler。
type Handler struct {
	resolver Resolver
	logger   *logrus.Logger
}

// NewHandler 构造 Handler。
func NewHandler(r Resolver, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{resolver: r, logger: logger}
}

type accountPayload struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Hash string `json:"hash"`
}

type resultPayload struct {
	IsFile   bool                  `json:"is_file"`
	Account  accountPayload        `json:"account"`
	Path     []string              `json:"path"`
	Item     drive.Item            `json:"item"`
	List     *drive.ListingPage    `json:"list,omitempty"`
	Doc      *drive.DocBundle      `json:"doc,omitempty"`
	Preview  *preview.Presentation `json:"preview,omitempty"`
	Warnings []string              `json:"warnings,omitempty"`
}

// Browse 处理一次浏览请求。
func (h *Handler) Browse(c fiber.Ctx, target server.Target) error {
	started := time.Now()
	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	req := resolver.Request{
		Hash:     target.Hash,
		Query:    target.Query,
		Download: isTruthy(c.Query("download")),
		SortBy:   c.Query("sortBy"),
		Page:     parsePage(c.Query("page")),
	}

	res, err := h.resolver.Resolve(ctx, req)
	if err != nil {
		kind := drive.KindOf(err)
		status := drive.HTTPStatus(kind)
		h.logResult(c, target, nil, "error", status, started, err)
		return h.writeError(c, status, kind.String(), drive.MessageOf(err))
	}

	if res.IsFile && res.Preview != nil {
		switch res.Preview.Mode {
		case preview.ModeRedirect:
			h.logResult(c, target, res, "redirect", fiber.StatusFound, started, nil)
			return c.Redirect().Status(fiber.StatusFound).To(res.Preview.RedirectURL)
		case preview.ModeTooLarge:
			back := c.Get(fiber.HeaderReferer)
			if back == "" {
				back = folderURL(res.Hash, resolver.ParentPath(res.Segments))
			}
			c.Set(NoticeHeader, res.Preview.Notice)
			h.logResult(c, target, res, "too_large", fiber.StatusFound, started, nil)
			return c.Redirect().Status(fiber.StatusFound).To(back)
		}
	}

	payload := resultPayload{
		IsFile: res.IsFile,
		Account: accountPayload{
			ID:   res.Account.ID,
			Name: res.Account.Name,
			Hash: res.Hash,
		},
		Path:     res.Segments,
		Item:     res.Item,
		List:     res.Listing,
		Doc:      res.Docs,
		Preview:  res.Preview,
		Warnings: res.Warnings,
	}
	if len(res.Warnings) > 0 {
		c.Set(NoticeHeader, strings.Join(res.Warnings, "; "))
	}
	h.logResult(c, target, res, "render", fiber.StatusOK, started, nil)
	return c.JSON(payload)
}

func (h *Handler) writeError(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

func (h *Handler) logResult(c fiber.Ctx, target server.Target, res *resolver.Result, outcome string, status int, started time.Time, err error) {
	metrics.RecordRequest(outcome, status)

	accountID := 0
	path := target.Query
	if res != nil {
		accountID = res.Account.ID
		path = res.Path
	}
	fields := logging.RequestFields(accountID, target.Hash, path)
	fields["action"] = "browse"
	fields["outcome"] = outcome
	fields["status"] = status
	fields["elapsed_ms"] = time.Since(started).Milliseconds()
	if reqID := server.RequestID(c); reqID != "" {
		fields["request_id"] = reqID
	}
	if res != nil && len(res.Warnings) > 0 {
		fields["warnings"] = res.Warnings
	}
	if err != nil {
		fields["error"] = err.Error()
		if drive.KindOf(err) == drive.KindUpstream || drive.KindOf(err) == drive.KindUnknown {
			h.logger.WithFields(fields).Error("browse_failed")
			return
		}
		h.logger.WithFields(fields).Warn("browse_rejected")
		return
	}
	h.logger.WithFields(fields).Info("browse_complete")
}

func folderURL(hash, parent string) string {
	if parent == "" {
		return "/d/" + hash
	}
	segments := strings.Split(parent, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return "/d/" + hash + "/" + strings.Join(segments, "/")
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func isTruthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "false", "no":
		return false
	default:
		return true
	}
}
