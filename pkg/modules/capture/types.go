package capture

import (
	"encoding/json"
	"fmt"

	"github.com/capturekit/capture-mcp-server/pkg/modules/common"
)

// Backend endpoints
const (
	EndpointScreenshot = "/v1/screenshot"
	EndpointPDF        = "/v1/pdf"
	EndpointOGImage    = "/v1/og-image"
	EndpointVideo      = "/v1/video"
)

// responseTypeJSON asks the backend for a JSON envelope instead of raw bytes
const responseTypeJSON = "json"

// ScreenshotRequest is the body of POST /v1/screenshot
type ScreenshotRequest struct {
	common.Source
	Format             string `json:"format,omitempty"`
	Quality            int    `json:"quality,omitempty"`
	Width              int    `json:"width,omitempty"`
	Height             int    `json:"height,omitempty"`
	FullPage           bool   `json:"fullPage,omitempty"`
	Device             string `json:"device,omitempty"`
	DarkMode           bool   `json:"darkMode,omitempty"`
	BlockAds           bool   `json:"blockAds,omitempty"`
	BlockCookieBanners bool   `json:"blockCookieBanners,omitempty"`
	Delay              int    `json:"delay,omitempty"`
	WaitForSelector    string `json:"waitForSelector,omitempty"`
	Selector           string `json:"selector,omitempty"`
	ResponseType       string `json:"responseType"`
}

// Margins are CSS lengths ("10mm", "0.5in")
type Margins struct {
	Top    string `json:"top,omitempty"`
	Right  string `json:"right,omitempty"`
	Bottom string `json:"bottom,omitempty"`
	Left   string `json:"left,omitempty"`
}

// IsZero reports whether no margin was set
func (m Margins) IsZero() bool {
	return m == Margins{}
}

// PDFRequest is the body of POST /v1/pdf
type PDFRequest struct {
	common.Source
	PageSize        string   `json:"pageSize,omitempty"`
	Landscape       bool     `json:"landscape,omitempty"`
	PrintBackground bool     `json:"printBackground,omitempty"`
	Scale           float64  `json:"scale,omitempty"`
	Margins         *Margins `json:"margins,omitempty"`
	Delay           int      `json:"delay,omitempty"`
	WaitForSelector string   `json:"waitForSelector,omitempty"`
	ResponseType    string   `json:"responseType"`
}

// OGImageRequest is the body of POST /v1/og-image
type OGImageRequest struct {
	common.Source
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	Format       string `json:"format,omitempty"`
	ResponseType string `json:"responseType"`
}

// VideoRequest is the body of POST /v1/video
type VideoRequest struct {
	URL          string `json:"url"`
	Duration     int    `json:"duration,omitempty"`
	Format       string `json:"format,omitempty"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	FPS          int    `json:"fps,omitempty"`
	Scroll       bool   `json:"scroll,omitempty"`
	ScrollSpeed  string `json:"scrollSpeed,omitempty"`
	DarkMode     bool   `json:"darkMode,omitempty"`
	BlockAds     bool   `json:"blockAds,omitempty"`
	ResponseType string `json:"responseType"`
}

// Envelope is the JSON answer for every binary capture. FileSize, Took and
// Duration are kept as json.Number so they are relayed exactly as sent.
type Envelope struct {
	Data     string      `json:"data"`
	MimeType string      `json:"mimeType,omitempty"`
	Format   string      `json:"format,omitempty"`
	FileSize json.Number `json:"fileSize,omitempty"`
	Took     json.Number `json:"took,omitempty"`
	Width    int         `json:"width,omitempty"`
	Height   int         `json:"height,omitempty"`
	Duration json.Number `json:"duration,omitempty"`
	URL      string      `json:"url,omitempty"`
}

// Kind groups the tools by how their payload is presented
type Kind string

const (
	KindImage Kind = "image"
	KindPDF   Kind = "pdf"
	KindVideo Kind = "video"
)

func jsonNumber[T int | string](v T) json.Number {
	return json.Number(fmt.Sprint(v))
}
