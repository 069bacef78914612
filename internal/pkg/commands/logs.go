package commands

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/endorses/dashsync/internal/pkg/i18n"
	"github.com/endorses/dashsync/internal/pkg/types"
)

// ExportFormats lists the accepted export formats
var ExportFormats = []string{"json", "xml", "csv"}

// LogFilter narrows the log table. Empty fields match everything.
type LogFilter struct {
	Level string `json:"level"`
	Tag   string `json:"tag"`
	Date  string `json:"date"`
}

// FilterLogs queries the server with f and applies the result as a
// FilterQuery snapshot. The returned entries are the server result even when
// a newer push superseded it in the view.
func (h *Handlers) FilterLogs(ctx context.Context, f LogFilter) ([]types.LogEntry, error) {
	if f.Level != "" {
		level, err := types.ParseLogLevel(f.Level)
		if err != nil {
			return nil, h.invalid("level", "is not a known log level", h.printer.Sprintf(i18n.MsgInvalidLevel, f.Level))
		}
		f.Level = string(level)
	}

	h.mu.Lock()
	h.lastFilter = f
	h.mu.Unlock()

	entries, applied, err := h.loadLogs(ctx, f, types.SourceFilterQuery)
	if err != nil {
		return nil, err
	}
	if applied {
		h.feedback.Success(h.printer.Sprintf(i18n.MsgLogsShown, len(entries)))
	}
	return entries, nil
}

// loadLogs reserves a sequence before the request so the reply can be
// ordered against pushes received while it was in flight
func (h *Handlers) loadLogs(ctx context.Context, f LogFilter, source types.Source) ([]types.LogEntry, bool, error) {
	seq := h.view.NextSequence()
	raw, err := h.client.Request(ctx, EndpointFilterLogs, http.MethodPost, f)
	if err != nil {
		return nil, false, h.fail(ctx, EndpointFilterLogs, err)
	}
	entries, err := types.DecodeLogsResponse(raw)
	if err != nil {
		return nil, false, h.fail(ctx, EndpointFilterLogs, err)
	}
	return entries, h.view.ApplyLogSnapshot(entries, source, seq), nil
}

// ExportLogs downloads the log export in format and saves it as
// logs.<format>. It returns the saved path.
func (h *Handlers) ExportLogs(ctx context.Context, format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		return "", h.required("format")
	}
	if !validFormat(format) {
		return "", h.invalid("format", "must be one of json, xml, csv", h.printer.Sprintf(i18n.MsgInvalidFormat, format))
	}

	endpoint := EndpointExportLogs + "?format=" + url.QueryEscape(format)
	blob, err := h.client.Download(ctx, endpoint)
	if err != nil {
		return "", h.fail(ctx, endpoint, err)
	}

	path, err := h.saver.Save("logs."+format, blob.Data)
	if err != nil {
		h.feedback.Failure(err.Error())
		return "", err
	}
	h.feedback.Success(h.printer.Sprintf(i18n.MsgExportSaved, path))
	return path, nil
}

func validFormat(format string) bool {
	for _, f := range ExportFormats {
		if f == format {
			return true
		}
	}
	return false
}
