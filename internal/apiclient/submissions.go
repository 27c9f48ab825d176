package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"training_portal/internal/model"
)

// Upload is one file headed for a submit endpoint.
type Upload struct {
	Filename       string
	ContentType    string
	Body           io.Reader
	Notes          string
	SubmissionType string
}

// Download is a streamed submission file. The caller must close Body.
type Download struct {
	Body          io.ReadCloser
	ContentType   string
	Filename      string
	ContentLength int64
}

func encodeUpload(up Upload) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     "file",
		"filename": up.Filename,
	}))
	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, up.Body); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("notes", up.Notes); err != nil {
		return nil, "", err
	}
	if up.SubmissionType != "" {
		if err := w.WriteField("submission_type", up.SubmissionType); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func (c *Client) upload(ctx context.Context, endpoint, path string, up Upload) (*model.Submission, error) {
	body, contentType, err := encodeUpload(up)
	if err != nil {
		return nil, &Error{Kind: KindInvalid, Op: endpoint, Err: err}
	}
	var out struct {
		Submission *model.Submission `json:"submission"`
	}
	err = c.call(ctx, request{
		method:      http.MethodPost,
		endpoint:    endpoint,
		path:        path,
		rawBody:     body,
		contentType: contentType,
		out:         &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Submission, nil
}

// SubmitProject posts a project file. The returned submission may be nil when
// the training API only acknowledges the upload.
func (c *Client) SubmitProject(ctx context.Context, projectID int, up Upload) (*model.Submission, error) {
	return c.upload(ctx, "/api/projects/:id/submit", fmt.Sprintf("/api/projects/%d/submit", projectID), up)
}

func (c *Client) SubmitFinalProject(ctx context.Context, up Upload) (*model.Submission, error) {
	return c.upload(ctx, "/api/final-project/submit", "/api/final-project/submit", up)
}

func (c *Client) listSubmissions(ctx context.Context, endpoint, path string, query url.Values) ([]model.Submission, error) {
	var out struct {
		Submissions []model.Submission `json:"submissions" validate:"dive"`
	}
	err := c.call(ctx, request{
		method:   http.MethodGet,
		endpoint: endpoint,
		path:     path,
		query:    query,
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Submissions, nil
}

func (c *Client) ListProjectSubmissions(ctx context.Context, projectID int, submissionType string) ([]model.Submission, error) {
	query := url.Values{}
	if submissionType != "" {
		query.Set("submission_type", submissionType)
	}
	return c.listSubmissions(ctx, "/api/projects/:id/submissions", fmt.Sprintf("/api/projects/%d/submissions", projectID), query)
}

func (c *Client) ListMySubmissions(ctx context.Context) ([]model.Submission, error) {
	return c.listSubmissions(ctx, "/api/submissions", "/api/submissions", nil)
}

func (c *Client) ListFinalProjectSubmissions(ctx context.Context) ([]model.Submission, error) {
	return c.listSubmissions(ctx, "/api/final-project/submissions", "/api/final-project/submissions", nil)
}

// ListAllSubmissions is the mentor listing; zero filter fields are omitted.
func (c *Client) ListAllSubmissions(ctx context.Context, filter model.SubmissionFilter) ([]model.Submission, error) {
	query := url.Values{}
	if filter.ProjectID > 0 {
		query.Set("project_id", strconv.Itoa(filter.ProjectID))
	}
	if filter.StudentID > 0 {
		query.Set("student_id", strconv.Itoa(filter.StudentID))
	}
	if filter.SubmissionType != "" {
		query.Set("submission_type", filter.SubmissionType)
	}
	return c.listSubmissions(ctx, "/api/admin/submissions", "/api/admin/submissions", query)
}

func (c *Client) SubmissionContent(ctx context.Context, submissionID int) (*model.SubmissionContent, error) {
	var out model.SubmissionContent
	err := c.call(ctx, request{
		method:   http.MethodGet,
		endpoint: "/api/submissions/:id/content",
		path:     fmt.Sprintf("/api/submissions/%d/content", submissionID),
		out:      &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReviewSubmission(ctx context.Context, submissionID int, review model.ReviewRequest) error {
	return c.call(ctx, request{
		method:   http.MethodPost,
		endpoint: "/api/submissions/:id/review",
		path:     fmt.Sprintf("/api/submissions/%d/review", submissionID),
		body:     review,
	})
}

// DownloadSubmission opens the stored file. Error responses are decoded like
// any other call; a 2xx body is handed back unread.
func (c *Client) DownloadSubmission(ctx context.Context, submissionID int) (*Download, error) {
	r := request{
		method:   http.MethodGet,
		endpoint: "/api/submissions/:id/download",
		path:     fmt.Sprintf("/api/submissions/%d/download", submissionID),
	}
	resp, err := c.send(ctx, r, nil, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, c.decode(resp, r)
	}

	dl := &Download{
		Body:          resp.Body,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.ContentLength,
		Filename:      fmt.Sprintf("submission-%d", submissionID),
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			dl.Filename = params["filename"]
		}
	}
	return dl, nil
}
