package app

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/samvad-hq/quickpay-go/internal/storage"
	"github.com/samvad-hq/quickpay-go/pkg/quickpay"
)

// Output formats accepted by Render and RenderHistory.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatRaw  = "raw"
)

// Render writes the status line, optionally the masked raw header blocks, and the body.
func Render(w io.Writer, resp *quickpay.Response, format string, showHeaders bool) error {
	if resp == nil {
		return fmt.Errorf("nil response")
	}

	statusColor(resp.HTTPStatus()).Fprintf(w, "HTTP %d\n", resp.HTTPStatus())

	if showHeaders {
		raw := resp.AsRaw(false)
		dim := color.New(color.Faint)
		dim.Fprint(w, normalizeBlock(raw.SentHeaders))
		dim.Fprint(w, normalizeBlock(raw.ReceivedHeaders))
	}

	body, err := formatBody(resp.Body(), format)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	if !bytes.HasSuffix(body, []byte("\n")) {
		_, err = io.WriteString(w, "\n")
	}
	return err
}

// RenderHistory writes journal entries in the given format.
func RenderHistory(w io.Writer, entries []storage.Entry, format string) error {
	switch format {
	case FormatJSON:
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("encode history: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", out)
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("encode history: %w", err)
		}
		return enc.Close()
	default:
		for _, e := range entries {
			status := fmt.Sprintf("%d", e.StatusCode)
			if e.Error != "" {
				status = "ERR"
			}
			if _, err := fmt.Fprintf(w, "%s  %-6s %-4s %6dms  %s\n",
				e.At.Format("2006-01-02T15:04:05Z07:00"), e.Method, status, e.DurationMs, e.Path); err != nil {
				return err
			}
		}
		return nil
	}
}

func formatBody(body []byte, format string) ([]byte, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		if err := json.Indent(&buf, body, "", "  "); err != nil {
			// not JSON: print as-is
			return body, nil
		}
		return buf.Bytes(), nil
	case FormatYAML:
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			return body, nil
		}
		out, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return out, nil
	default:
		return body, nil
	}
}

func statusColor(status int) *color.Color {
	switch {
	case status >= 200 && status < 300:
		return color.New(color.FgGreen, color.Bold)
	case status >= 500:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgYellow, color.Bold)
	}
}

func normalizeBlock(block string) string {
	return strings.ReplaceAll(block, "\r\n", "\n")
}
