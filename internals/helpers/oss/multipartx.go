package helper

import (
	"fmt"
	"io"
	"mime/multipart"
)

// ==============================
// File collector
// ==============================

// Default kandidat nama field yg umum dipakai FE/Postman
var defaultPageFieldCandidates = []string{
	"page", "pages[]", "pages", "file", "image",
}

// FirstUploadFile returns the first non-empty file found under the candidate
// field names, or any other file field when none match.
func FirstUploadFile(form *multipart.Form, candidates ...string) (*multipart.FileHeader, error) {
	if form == nil || form.File == nil {
		return nil, fmt.Errorf("no files in form")
	}
	if len(candidates) == 0 {
		candidates = defaultPageFieldCandidates
	}

	for _, key := range candidates {
		for _, fh := range form.File[key] {
			if fh != nil && fh.Filename != "" {
				return fh, nil
			}
		}
	}
	// any other file field
	for _, fhs := range form.File {
		for _, fh := range fhs {
			if fh != nil && fh.Filename != "" {
				return fh, nil
			}
		}
	}
	return nil, fmt.Errorf("no files in form")
}

// ReadFileHeader reads an uploaded file up to maxBytes.
func ReadFileHeader(fh *multipart.FileHeader, maxBytes int64) ([]byte, error) {
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, fmt.Errorf("file too large: %d > %d bytes", fh.Size, maxBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
