package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"gopkg.in/yaml.v3"
)

// Service loads declarative assets (seed data, permission sets) from any
// location the abstract file system understands: local files, embed://,
// mem://, cloud object stores. Values support ${env.KEY} expansion.
type Service struct {
	fs        afs.Service
	baseURL   string
	fsOptions []storage.Option
}

// New creates a meta service rooted at baseURL. An empty baseURL makes
// Load treat every URL as absolute.
func New(fs afs.Service, baseURL string, options ...storage.Option) *Service {
	return &Service{fs: fs, baseURL: baseURL, fsOptions: options}
}

// Load reads the asset at URL (joined with the base URL when relative),
// expands ${env.*} expressions and unmarshals YAML or JSON into target
// based on the file extension (YAML by default).
func (s *Service) Load(ctx context.Context, URL string, target interface{}) error {
	location := s.resolve(URL)
	data, err := s.fs.DownloadWithURL(ctx, location, s.fsOptions...)
	if err != nil {
		return fmt.Errorf("failed to load asset from %s: %w", location, err)
	}
	expanded := expandEnvExpr(string(data))
	switch strings.ToLower(path.Ext(location)) {
	case ".json":
		if err = json.Unmarshal([]byte(expanded), target); err != nil {
			return fmt.Errorf("failed to parse json asset %s: %w", location, err)
		}
	default:
		if err = yaml.Unmarshal([]byte(expanded), target); err != nil {
			return fmt.Errorf("failed to parse yaml asset %s: %w", location, err)
		}
	}
	return nil
}

// Exists reports whether the asset is present.
func (s *Service) Exists(ctx context.Context, URL string) (bool, error) {
	return s.fs.Exists(ctx, s.resolve(URL), s.fsOptions...)
}

func (s *Service) resolve(URL string) string {
	if s.baseURL == "" {
		return URL
	}
	if u, err := url.Parse(URL); err == nil && u.Scheme != "" {
		return URL
	}
	return strings.TrimRight(s.baseURL, "/") + "/" + strings.TrimLeft(URL, "/")
}
