package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// ExportShape tells which of the two export response shapes the server used
type ExportShape string

const (
	// ShapeBlob is a raw file body (text/csv or octet-stream)
	ShapeBlob ExportShape = "blob"
	// ShapeJSON is a JSON envelope with a csv string field
	ShapeJSON ExportShape = "json"
)

// ExportResult is a downloaded export file
type ExportResult struct {
	Filename    string
	ContentType string
	Shape       ExportShape
	Data        []byte
}

// exportPayload covers {success, data: {csv, filename}} and a bare {csv, filename}
type exportPayload struct {
	Success  *bool           `json:"success"`
	Data     json.RawMessage `json:"data"`
	CSV      *string         `json:"csv"`
	Filename string          `json:"filename"`
	Message  string          `json:"message"`
	Error    *ErrorBody      `json:"error"`
}

type exportData struct {
	CSV      *string `json:"csv"`
	Filename string  `json:"filename"`
}

// Export downloads an export file. Both response shapes are supported: a raw
// blob whose filename comes from Content-Disposition, and a JSON envelope
// carrying the CSV text in a csv field.
func (c *Client) Export(ctx context.Context, exportPath string, query url.Values) (*ExportResult, error) {
	resp, err := c.Do(ctx, Request{
		Method:  http.MethodGet,
		Path:    exportPath,
		Query:   query,
		Headers: map[string]string{"Accept": "text/csv, application/octet-stream, application/json"},
	})
	if err != nil {
		return nil, err
	}

	contentType := resp.Headers.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)
	filename := filenameFromDisposition(resp.Headers.Get("Content-Disposition"))

	if mediaType != "application/json" {
		if filename == "" {
			filename = defaultExportName(exportPath, time.Now())
		}
		return &ExportResult{
			Filename:    filename,
			ContentType: contentType,
			Shape:       ShapeBlob,
			Data:        resp.Body,
		}, nil
	}

	var payload exportPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, decodeError(http.MethodGet, exportPath, resp, err)
	}
	if payload.Success != nil && !*payload.Success {
		return nil, rejectedError(http.MethodGet, exportPath, resp, payload.Message, payload.Error)
	}

	csvText := payload.CSV
	if payload.Filename != "" && filename == "" {
		filename = payload.Filename
	}
	if csvText == nil && len(payload.Data) > 0 {
		var data exportData
		if err := json.Unmarshal(payload.Data, &data); err != nil {
			return nil, decodeError(http.MethodGet, exportPath, resp, err)
		}
		csvText = data.CSV
		if data.Filename != "" && filename == "" {
			filename = data.Filename
		}
	}
	if csvText == nil {
		return nil, decodeError(http.MethodGet, exportPath, resp, fmt.Errorf("export envelope has no csv field"))
	}
	if filename == "" {
		filename = defaultExportName(exportPath, time.Now())
	}
	return &ExportResult{
		Filename:    filename,
		ContentType: "text/csv; charset=utf-8",
		Shape:       ShapeJSON,
		Data:        []byte(*csvText),
	}, nil
}

func filenameFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	name := params["filename"]
	if name == "" {
		return ""
	}
	return path.Base(name)
}

// defaultExportName derives a name like orders-20240131.csv from the export path
func defaultExportName(exportPath string, now time.Time) string {
	trimmed := strings.Trim(exportPath, "/")
	parts := strings.Split(trimmed, "/")
	name := "export"
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" && parts[i] != "export" && parts[i] != "csv" {
			name = parts[i]
			break
		}
	}
	return fmt.Sprintf("%s-%s.csv", name, now.Format("20060102"))
}
