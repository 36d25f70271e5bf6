package entities

import (
	"fmt"
	"path"
	"strings"
)

// Coordinate is a Maven artifact coordinate "group:artifact:version[:classifier][@ext]"
type Coordinate struct {
	Group      string
	Artifact   string
	Version    string
	Classifier string
	Extension  string
}

// ParseCoordinate parses a Maven coordinate string
func ParseCoordinate(raw string) (Coordinate, error) {
	c := Coordinate{Extension: "jar"}

	body := strings.TrimSpace(raw)
	if at := strings.LastIndex(body, "@"); at >= 0 {
		c.Extension = body[at+1:]
		body = body[:at]
	}

	parts := strings.Split(body, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q: expected group:artifact:version[:classifier][@ext]", raw)
	}
	c.Group, c.Artifact, c.Version = parts[0], parts[1], parts[2]
	if len(parts) == 4 {
		c.Classifier = parts[3]
	}
	if c.Group == "" || c.Artifact == "" || c.Version == "" || c.Extension == "" {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q: empty component", raw)
	}
	return c, nil
}

// FileName returns "{artifact}-{version}[-{classifier}].{ext}"
func (c Coordinate) FileName() string {
	name := c.Artifact + "-" + c.Version
	if c.Classifier != "" {
		name += "-" + c.Classifier
	}
	return name + "." + c.Extension
}

// RelativePath returns the repository layout path of the artifact file
func (c Coordinate) RelativePath() string {
	return path.Join(strings.ReplaceAll(c.Group, ".", "/"), c.Artifact, c.Version, c.FileName())
}

func (c Coordinate) String() string {
	s := c.Group + ":" + c.Artifact + ":" + c.Version
	if c.Classifier != "" {
		s += ":" + c.Classifier
	}
	if c.Extension != "jar" {
		s += "@" + c.Extension
	}
	return s
}
