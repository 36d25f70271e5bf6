// Package xml reads Maven repository metadata documents.
package xml

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// ErrNoVersion is returned when a metadata document names no version at all
var ErrNoVersion = errors.New("metadata declares no version")

var (
	latestExpr   = xpath.MustCompile("/metadata/versioning/latest")
	releaseExpr  = xpath.MustCompile("/metadata/versioning/release")
	versionsExpr = xpath.MustCompile("/metadata/versioning/versions/version")
)

// Metadata is the subset of maven-metadata.xml the resolvers use
type Metadata struct {
	Latest   string
	Release  string
	Versions []string
}

// LatestVersion returns <latest>, falling back to <release> and then the last listed version
func (m *Metadata) LatestVersion() (string, error) {
	switch {
	case m.Latest != "":
		return m.Latest, nil
	case m.Release != "":
		return m.Release, nil
	case len(m.Versions) > 0:
		return m.Versions[len(m.Versions)-1], nil
	}
	return "", ErrNoVersion
}

// MetadataParser parses maven-metadata.xml with XPath
type MetadataParser struct{}

// NewMetadataParser creates a new metadata parser
func NewMetadataParser() *MetadataParser {
	return &MetadataParser{}
}

// Parse reads a metadata document
func (p *MetadataParser) Parse(r io.Reader) (*Metadata, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing metadata XML: %w", err)
	}

	m := &Metadata{
		Latest:  text(xmlquery.QuerySelector(root, latestExpr)),
		Release: text(xmlquery.QuerySelector(root, releaseExpr)),
	}
	for _, n := range xmlquery.QuerySelectorAll(root, versionsExpr) {
		if v := text(n); v != "" {
			m.Versions = append(m.Versions, v)
		}
	}
	return m, nil
}

func text(n *xmlquery.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.InnerText())
}
