package client

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
)

// File is a downloaded attachment.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// FilenameFromDisposition extracts the attachment filename from a
// Content-Disposition header, falling back to fallback when absent.
func FilenameFromDisposition(header, fallback string) string {
	if strings.TrimSpace(header) == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return fallback
	}
	name := params["filename"]
	if name == "" {
		return fallback
	}
	// Never let a server-supplied name escape the target directory.
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return fallback
	}
	return name
}

// MasterDataTypes lists the importable masters and their columns.
func (c *Client) MasterDataTypes(ctx context.Context) ([]MasterDataType, error) {
	var out struct {
		Types []MasterDataType `json:"types"`
	}
	if err := c.get(ctx, "/master-data/types", nil, &out); err != nil {
		return nil, err
	}
	return out.Types, nil
}

// ExportMasterData downloads every row of a master as an xlsx workbook.
func (c *Client) ExportMasterData(ctx context.Context, kind string) (*File, error) {
	return c.download(ctx, "/master-data/export/"+kind, kind+".xlsx")
}

// DownloadTemplate downloads the header-only import workbook for a master.
func (c *Client) DownloadTemplate(ctx context.Context, kind string) (*File, error) {
	return c.download(ctx, "/master-data/template/"+kind, kind+"-template.xlsx")
}

func (c *Client) download(ctx context.Context, p, fallback string) (*File, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet, application/json").
		Get(p)
	if err != nil {
		return nil, &APIError{Code: CodeTransport, Message: err.Error()}
	}
	if resp.IsError() {
		_, apiErr := decodeEnvelope(resp, nil)
		if apiErr == nil {
			apiErr = &APIError{StatusCode: resp.StatusCode(), Message: statusText(resp.StatusCode())}
		}
		return nil, apiErr
	}
	return &File{
		Name:        FilenameFromDisposition(resp.Header().Get("Content-Disposition"), fallback),
		ContentType: resp.Header().Get("Content-Type"),
		Data:        resp.Body(),
	}, nil
}

// ImportMasterData uploads an xlsx workbook. Rows that fail are reported in
// the result; the returned message is the server's summary line.
func (c *Client) ImportMasterData(ctx context.Context, kind, filename string, r io.Reader) (*ImportResult, string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, r).
		Execute(http.MethodPost, "/master-data/import/"+kind)
	if err != nil {
		return nil, "", &APIError{Code: CodeTransport, Message: err.Error()}
	}
	var out ImportResult
	message, err := decodeEnvelope(resp, &out)
	if err != nil {
		return nil, "", err
	}
	return &out, message, nil
}
