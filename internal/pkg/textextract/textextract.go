// Package textextract turns uploaded bytes into plain text according to
// their content type.
package textextract

import (
	"errors"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrInvalidEncoding is returned when the bytes cannot be read as text.
var ErrInvalidEncoding = errors.New("invalid encoding")

// Extract returns the text content of data. PDF and Markdown inputs are
// recognised by content type or, failing that, by filename extension.
// Everything else must be UTF-8, or UTF-16 with a byte order mark.
func Extract(filename, contentType string, data []byte) (string, error) {
	switch kind(filename, contentType) {
	case kindPDF:
		text, err := ExtractPDF(data)
		if err != nil {
			return "", errors.Join(ErrInvalidEncoding, err)
		}
		return text, nil
	case kindMarkdown:
		text, err := Decode(data)
		if err != nil {
			return "", err
		}
		return MarkdownToText([]byte(text)), nil
	default:
		return Decode(data)
	}
}

// Decode reads data as UTF-8, honouring a UTF-8 or UTF-16 byte order mark.
func Decode(data []byte) (string, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
	if err != nil {
		return "", ErrInvalidEncoding
	}
	if !utf8.Valid(out) {
		return "", ErrInvalidEncoding
	}
	return string(out), nil
}

type contentKind int

const (
	kindText contentKind = iota
	kindPDF
	kindMarkdown
)

func kind(filename, contentType string) contentKind {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case "application/pdf":
			return kindPDF
		case "text/markdown", "text/x-markdown":
			return kindMarkdown
		}
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return kindPDF
	case ".md", ".markdown":
		return kindMarkdown
	}
	return kindText
}
