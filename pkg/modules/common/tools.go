package common

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ToolsConfig contains tools configuration
type ToolsConfig struct {
	Prefix string `mapstructure:"prefix" json:"prefix" yaml:"prefix"`
	Suffix string `mapstructure:"suffix" json:"suffix" yaml:"suffix"`
}

// BuildToolName builds tool name based on configuration
func (c ToolsConfig) BuildToolName(baseName string) string {
	name := baseName
	if c.Prefix != "" {
		name = c.Prefix + name
	}
	if c.Suffix != "" {
		name = name + c.Suffix
	}
	return name
}

// ToolConfig defines configuration for a single tool
type ToolConfig struct {
	Name        string // Tool name
	Description string // Tool description
	Enabled     bool   // Whether the tool is enabled
}

var mimeByFormat = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"webp": "image/webp",
	"gif":  "image/gif",
	"pdf":  "application/pdf",
	"mp4":  "video/mp4",
	"webm": "video/webm",
}

// MimeType maps an output format to its MIME type
func MimeType(format string) string {
	if mt, ok := mimeByFormat[strings.ToLower(format)]; ok {
		return mt
	}
	return "application/octet-stream"
}

// DecodePayload decodes base64 data, with or without a data: URI prefix
func DecodePayload(data string) ([]byte, error) {
	data = StripDataURI(data)
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		// unpadded and URL-safe alphabets are accepted too
		if alt, altErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(data, "=")); altErr == nil {
			return alt, nil
		}
		if alt, altErr := base64.URLEncoding.DecodeString(data); altErr == nil {
			return alt, nil
		}
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return decoded, nil
}

// StripDataURI removes a leading "data:<mime>;base64," prefix
func StripDataURI(data string) string {
	data = strings.TrimSpace(data)
	if strings.HasPrefix(data, "data:") {
		if idx := strings.Index(data, ","); idx >= 0 {
			return data[idx+1:]
		}
	}
	return data
}
