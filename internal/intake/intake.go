// Package intake validates chart screenshots and turns them into data URLs
// for preview and transmission.
package intake

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/newthinker/tradevision/internal/core"
)

// Accepted MIME types.
const (
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
)

// File is an image offered for analysis.
type File struct {
	Name string
	// MimeType is the declared type; empty means sniff from Data.
	MimeType string
	Data     []byte
}

// Selection is an accepted file with its data-URL preview.
type Selection struct {
	File    File
	Preview string
}

// Supported reports whether mimeType is accepted.
func Supported(mimeType string) bool {
	return mimeType == MimePNG || mimeType == MimeJPEG
}

// Accept validates the file type and encodes it as a data URL.
func Accept(f File) (*Selection, error) {
	if f.MimeType == "" {
		f.MimeType = sniff(f.Data)
	}
	if !Supported(f.MimeType) {
		return nil, core.WrapError(core.ErrUnsupportedImage, fmt.Errorf("got %q", f.MimeType))
	}
	return &Selection{File: f, Preview: EncodeDataURL(f.MimeType, f.Data)}, nil
}

func sniff(data []byte) string {
	ct := http.DetectContentType(data)
	ct, _, _ = strings.Cut(ct, ";")
	return ct
}

// EncodeDataURL formats data as data:<mime>;base64,<payload>.
func EncodeDataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// SplitDataURL separates a base64 data URL into its MIME type and payload.
func SplitDataURL(dataURL string) (mimeType, payload string, err error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", "", core.WrapError(core.ErrInvalidDataURL, fmt.Errorf("missing data: scheme"))
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", core.WrapError(core.ErrInvalidDataURL, fmt.Errorf("missing payload separator"))
	}
	mimeType, ok = strings.CutSuffix(header, ";base64")
	if !ok {
		return "", "", core.WrapError(core.ErrInvalidDataURL, fmt.Errorf("not base64 encoded"))
	}
	return mimeType, payload, nil
}

// Intake holds the current preview and notifies a callback on every change.
type Intake struct {
	mu       sync.Mutex
	current  *Selection
	onSelect func(*Selection)
}

// New creates an Intake. onSelect may be nil.
func New(onSelect func(*Selection)) *Intake {
	return &Intake{onSelect: onSelect}
}

// Select accepts f, stores it as the current preview and invokes the
// callback. Rejected files leave the state untouched and skip the callback.
func (in *Intake) Select(f File) (*Selection, error) {
	sel, err := Accept(f)
	if err != nil {
		return nil, err
	}

	in.mu.Lock()
	in.current = sel
	in.mu.Unlock()

	if in.onSelect != nil {
		in.onSelect(sel)
	}
	return sel, nil
}

// Clear drops the preview and invokes the callback with nil.
func (in *Intake) Clear() {
	in.mu.Lock()
	in.current = nil
	in.mu.Unlock()

	if in.onSelect != nil {
		in.onSelect(nil)
	}
}

// Current returns the accepted selection, or nil.
func (in *Intake) Current() *Selection {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.current
}
