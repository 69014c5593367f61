package handlers

import (
	"bufio"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"ecommerce/internal/apperr"
	"ecommerce/internal/logger"
	"ecommerce/internal/utils/helpers"

	"go.uber.org/zap"
)

const (
	defaultLogLimit = 200
	maxLogLimit     = 1000
)

// AdminLogsHandler serves the tail of the JSON log written by the logger package.
type AdminLogsHandler struct {
	LogDir string
}

func NewAdminLogsHandler(logDir string) *AdminLogsHandler {
	return &AdminLogsHandler{LogDir: logDir}
}

type logsResponse struct {
	Items []json.RawMessage `json:"items"`
	Count int               `json:"count"`
}

// GetLogs godoc
// @Summary Tail of the application log
// @Description Returns the newest JSON log lines, oldest first. Supports level and substring filters.
// @Tags admin
// @Security ApiKeyAuth
// @Produce json
// @Param level query string false "CSV of levels: debug,info,warn,error"
// @Param q query string false "Substring search"
// @Param limit query int false "Number of lines (default 200, max 1000)"
// @Success 200 {object} logsResponse
// @Failure 403 {object} helpers.ErrorResponse
// @Router /api/admin/logs [get]
func (h *AdminLogsHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	levels := upperSet(query.Get("level"))
	limit := clampAtoi(query.Get("limit"), defaultLogLimit, 1, maxLogLimit)

	var qre *regexp.Regexp
	if q := strings.TrimSpace(query.Get("q")); q != "" {
		qre = regexp.MustCompile("(?i)" + regexp.QuoteMeta(q))
	}

	items, err := h.tail(limit, func(raw []byte) bool {
		if qre != nil && !qre.Match(raw) {
			return false
		}
		var entry struct {
			Level string `json:"level"`
		}
		if err := json.Unmarshal(raw, &entry); err != nil {
			return false
		}
		return len(levels) == 0 || levels[strings.ToUpper(entry.Level)]
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			helpers.AppError(w, apperr.New(apperr.KindNotFound, "log file not found"))
			return
		}
		logger.WithCtx(r.Context()).Error("Failed to read log file", zap.Error(err))
		helpers.AppError(w, apperr.Internal(err))
		return
	}

	helpers.JSON(w, http.StatusOK, logsResponse{Items: items, Count: len(items)})
}

// tail keeps the last limit lines accepted by keep, in file order.
func (h *AdminLogsHandler) tail(limit int, keep func([]byte) bool) ([]json.RawMessage, error) {
	f, err := os.Open(filepath.Join(h.LogDir, logger.LogFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ring := make([]json.RawMessage, 0, limit)
	next := 0

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		raw := sc.Bytes()
		if !keep(raw) {
			continue
		}
		line := append(json.RawMessage{}, raw...)
		if len(ring) < limit {
			ring = append(ring, line)
			continue
		}
		ring[next] = line
		next = (next + 1) % limit
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return append(ring[next:], ring[:next]...), nil
}

func upperSet(csv string) map[string]bool {
	set := map[string]bool{}
	for _, p := range strings.Split(csv, ",") {
		if p = strings.TrimSpace(p); p != "" {
			set[strings.ToUpper(p)] = true
		}
	}
	return set
}

func clampAtoi(s string, def, min, max int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
