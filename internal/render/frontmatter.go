package render

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the metadata header accepted on imported markdown files.
type FrontMatter struct {
	Title          string `yaml:"title"`
	SEOTitle       string `yaml:"seo_title"`
	SEODescription string `yaml:"seo_description"`
	Icon           string `yaml:"icon"`
	Publish        bool   `yaml:"publish"`
}

// ParseFrontMatter splits source into its metadata and markdown body. Files
// without a header yield zero metadata and the whole source as body.
func ParseFrontMatter(source []byte) (FrontMatter, string, error) {
	var meta FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, "", fmt.Errorf("parse frontmatter: %w", err)
	}
	return meta, string(body), nil
}
