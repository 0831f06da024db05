// internal/api/handler/web/analyze.go
package web

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/newthinker/tradevision/internal/analysis"
	apihandler "github.com/newthinker/tradevision/internal/api/handler/api"
	"github.com/newthinker/tradevision/internal/core"
	"github.com/newthinker/tradevision/internal/intake"
	"github.com/newthinker/tradevision/internal/report"
	"go.uber.org/zap"
)

// PageData holds data for the index template
type PageData struct {
	Title      string
	Provider   string
	Configured bool
	// Preview is the data URL of the submitted screenshot.
	Preview template.URL
	Result  *ResultData
	Error   string
}

// ResultData is a rendered analysis with its export link.
type ResultData struct {
	report.View
	Filename string
	Download template.URL
}

// Index renders the upload page
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	h.render(w, http.StatusOK, "index.html", h.page())
}

// Analyze accepts the multipart upload form and renders the verdict.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.fail(w, h.page(), http.StatusMethodNotAllowed, core.ErrMethodNotAllowed)
		return
	}

	data := h.page()

	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}
	file, err := h.readUpload(r)
	if err != nil {
		h.fail(w, data, uploadStatus(err), err)
		return
	}

	sel, err := intake.Accept(*file)
	if err != nil {
		h.fail(w, data, http.StatusBadRequest, err)
		return
	}
	data.Preview = template.URL(sel.Preview)

	if h.analyzer == nil {
		h.fail(w, data, http.StatusInternalServerError, core.ErrConfigMissing)
		return
	}

	mimeType, payload, err := intake.SplitDataURL(sel.Preview)
	if err != nil {
		h.fail(w, data, http.StatusBadRequest, err)
		return
	}

	out, err := h.analyzer.Analyze(r.Context(), analysis.Request{Image: payload, MimeType: mimeType})
	if err != nil {
		status, body := apihandler.ErrorStatus(err)
		data.Error = failureMessage(status, body)
		h.render(w, status, "index.html", data)
		return
	}

	res := report.Decode(out)
	filename, export := report.Export(res, h.now())
	data.Result = &ResultData{
		View:     report.NewView(res),
		Filename: filename,
		Download: template.URL("data:application/json;base64," + base64.StdEncoding.EncodeToString(export)),
	}

	h.logger.Info("analysis rendered",
		zap.String("file", sel.File.Name),
		zap.String("mime_type", mimeType),
		zap.String("prediction", data.Result.Prediction),
	)
	h.render(w, http.StatusOK, "index.html", data)
}

func (h *Handler) page() PageData {
	data := PageData{Title: "AI Trade Vision"}
	if h.analyzer != nil {
		data.Provider = h.analyzer.Provider()
		data.Configured = true
	}
	return data
}

func (h *Handler) readUpload(r *http.Request) (*intake.File, error) {
	f, hdr, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, core.ErrNoImage
		}
		return nil, err
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if len(buf) == 0 {
		return nil, core.ErrNoImage
	}

	// generic part types are sniffed by intake
	mimeType := hdr.Header.Get("Content-Type")
	if mimeType == "application/octet-stream" {
		mimeType = ""
	}

	return &intake.File{
		Name:     hdr.Filename,
		MimeType: mimeType,
		Data:     buf,
	}, nil
}

func (h *Handler) fail(w http.ResponseWriter, data PageData, status int, err error) {
	_, body := apihandler.ErrorStatus(err)
	data.Error = failureMessage(status, body)
	h.logger.Warn("upload rejected", zap.Int("status", status), zap.Error(err))
	h.render(w, status, "index.html", data)
}

func uploadStatus(err error) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// failureMessage formats the inline error shown under the upload zone.
func failureMessage(status int, body any) string {
	text, err := json.Marshal(body)
	if err != nil {
		text = []byte(fmt.Sprint(body))
	}
	return fmt.Sprintf("Analysis failed: %d %s - %s", status, http.StatusText(status), text)
}
