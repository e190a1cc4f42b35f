package request

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/yumyai/emgapi/pkg/model"
)

// Page window asked for by the client. Page starts at 1.
type PageRequest struct {
	Page      int `json:"page"`
	Page_Size int `json:"page_size"`
}

func parsePositiveIntFallback(v string, fallback int) int {
	num, err := strconv.Atoi(v)
	if err != nil || num <= 0 {
		return fallback
	}
	return num
}

// NewPageRequest reads page and page_size, falling back to page 1 and
// defaultSize. page_size is capped at maxSize.
func NewPageRequest(q url.Values, defaultSize, maxSize int) PageRequest {
	size := parsePositiveIntFallback(q.Get("page_size"), defaultSize)
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}
	return PageRequest{
		Page:      parsePositiveIntFallback(q.Get("page"), 1),
		Page_Size: size,
	}
}

func (p PageRequest) Window() model.Window {
	return model.NewWindow(p.Page, p.Page_Size)
}

// Pages is the number of pages for count items, at least 1.
func (p PageRequest) Pages(count int) int {
	if count <= 0 || p.Page_Size <= 0 {
		return 1
	}
	return (count + p.Page_Size - 1) / p.Page_Size
}

// Analysis plus pipeline version, as in /v1/analyses/{accession}/{version}.
type EntityRequest struct {
	Accession string `json:"accession"`
	Version   string `json:"version"`
}

// ParseBool accepts the usual query spellings of true.
func ParseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
