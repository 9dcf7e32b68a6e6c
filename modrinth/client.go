package modrinth

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"modrinth-mod-checker/config"

	"go.uber.org/zap"
)

const (
	modrinthAPIURL = "https://api.modrinth.com/v2"
	defaultTimeout = 10 * time.Second

	// Courtesy pacing between requests; the run is sequential so this is
	// enough to stay well under Modrinth's rate limit.
	minRequestInterval = 100 * time.Millisecond
)

// ResponseCache stores raw API response payloads keyed by endpoint.
// Implemented by db.Store; nil disables caching.
type ResponseCache interface {
	Get(key string, maxAge time.Duration) ([]byte, bool)
	Put(key string, payload []byte) error
}

// Client handles communication with the Modrinth API.
type Client struct {
	BaseURL    string
	APIKey     string
	UserAgent  string
	HTTPClient *http.Client

	Cache    ResponseCache
	CacheTTL time.Duration

	// Rate limit state from X-Ratelimit-* headers of the last response.
	rateRemaining int
	rateReset     int
	lastRequest   time.Time
}

// NewClient creates a new Modrinth API client using the provided configuration.
func NewClient(cfg config.Config) (*Client, error) {
	if cfg.UserAgent == "" {
		// Should be handled by LoadConfig default, but double-check
		return nil, fmt.Errorf("USERAGENT is not configured")
	}

	return &Client{
		BaseURL:   modrinthAPIURL,
		APIKey:    cfg.ModrinthAPIKey,
		UserAgent: cfg.UserAgent,
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
		rateRemaining: 300,
	}, nil
}

func (c *Client) makeRequest(method, path string, queryParams url.Values, target interface{}, isBinary bool) (*http.Response, error) {
	fullURL := c.BaseURL + path
	if isBinary {
		// For binary downloads, the 'path' is expected to be the full URL already
		fullURL = path
	}

	req, err := http.NewRequest(method, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if queryParams != nil {
		req.URL.RawQuery = queryParams.Encode()
	}

	req.Header.Set("User-Agent", c.UserAgent)
	if c.APIKey != "" {
		req.Header.Set("Authorization", c.APIKey)
	}

	if !isBinary {
		req.Header.Set("Accept", "application/json")
	} else {
		req.Header.Set("Accept", "application/octet-stream")
	}

	c.waitForRateLimit()
	resp, err := c.HTTPClient.Do(req)
	c.lastRequest = time.Now()
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	c.updateRateLimits(resp.Header)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Try to read body for more error info, but don't fail if it's unreadable
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return resp, fmt.Errorf("api request failed: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	// Don't try to decode JSON or close body for binary responses here
	if target != nil && !isBinary {
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return resp, fmt.Errorf("failed to decode json response: %w", err)
		}
	}

	return resp, nil // For binary, return the response so the caller can handle the body
}

// waitForRateLimit sleeps long enough to respect the minimum request interval
// and any near-exhausted rate limit window reported by the API.
func (c *Client) waitForRateLimit() {
	if c.rateRemaining < 10 && c.rateReset > 0 {
		time.Sleep(time.Duration(c.rateReset) * time.Second)
		return
	}
	if since := time.Since(c.lastRequest); since < minRequestInterval {
		time.Sleep(minRequestInterval - since)
	}
}

func (c *Client) updateRateLimits(headers http.Header) {
	if v, err := strconv.Atoi(headers.Get("X-Ratelimit-Remaining")); err == nil {
		c.rateRemaining = v
	}
	if v, err := strconv.Atoi(headers.Get("X-Ratelimit-Reset")); err == nil {
		c.rateReset = v
	}
}

// cachedGet fetches a JSON endpoint through the response cache when one is attached.
func (c *Client) cachedGet(key, path string, target interface{}) error {
	if c.Cache != nil {
		if raw, ok := c.Cache.Get(key, c.CacheTTL); ok {
			if err := json.Unmarshal(raw, target); err == nil {
				return nil
			}
			// Corrupt cache entry: fall through and refetch.
		}
	}

	if _, err := c.makeRequest("GET", path, nil, target, false); err != nil {
		return err
	}

	if c.Cache != nil {
		if raw, err := json.Marshal(target); err == nil {
			if err := c.Cache.Put(key, raw); err != nil {
				return nil // cache write failure is not a request failure
			}
		}
	}
	return nil
}

// GetProject retrieves details for a specific project by slug or id.
func (c *Client) GetProject(idOrSlug string) (*Project, error) {
	var project Project
	err := c.cachedGet("project:"+idOrSlug, fmt.Sprintf("/project/%s", idOrSlug), &project)
	if err != nil {
		return nil, fmt.Errorf("failed to get project '%s': %w", idOrSlug, err)
	}
	return &project, nil
}

// GetProjectVersions retrieves the full version list for a project, in the
// API's native order (publish date descending). The list is deliberately
// unfiltered: compatibility resolution needs every declared game version and
// loader, not just the matching ones.
func (c *Client) GetProjectVersions(idOrSlug string) ([]Version, error) {
	var versions []Version
	err := c.cachedGet("versions:"+idOrSlug, fmt.Sprintf("/project/%s/version", idOrSlug), &versions)
	if err != nil {
		return nil, fmt.Errorf("failed to get project versions for '%s': %w", idOrSlug, err)
	}
	return versions, nil
}

// GetVersion retrieves a single version by id, including its dependency list.
func (c *Client) GetVersion(id string) (*Version, error) {
	var version Version
	err := c.cachedGet("version:"+id, fmt.Sprintf("/version/%s", id), &version)
	if err != nil {
		return nil, fmt.Errorf("failed to get version '%s': %w", id, err)
	}
	return &version, nil
}

// DownloadFile downloads a file from the given URL and saves it to the
// specified destination path.
func (c *Client) DownloadFile(log *zap.SugaredLogger, destinationPath, downloadURL string) error {
	dir := filepath.Dir(destinationPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		log.Warnw("Target directory for download does not exist, attempting to create", zap.String("directory", dir))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create target directory '%s': %w", dir, err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to check target directory '%s': %w", dir, err)
	}

	resp, err := c.makeRequest("GET", downloadURL, nil, nil, true)
	if err != nil {
		return fmt.Errorf("failed to start download for '%s' from %s: %w", filepath.Base(destinationPath), downloadURL, err)
	}
	defer resp.Body.Close()

	outFile, err := os.Create(destinationPath)
	if err != nil {
		return fmt.Errorf("failed to create file '%s': %w", destinationPath, err)
	}
	defer outFile.Close()

	_, err = io.Copy(outFile, resp.Body)
	if err != nil {
		// Attempt to remove partially downloaded file on error
		os.Remove(destinationPath)
		return fmt.Errorf("failed to write downloaded content to '%s': %w", destinationPath, err)
	}

	return nil
}

// --- Structs for API Responses ---

// Project represents a Modrinth project.
type Project struct {
	Slug        string `json:"slug"`
	ID          string `json:"id"`
	Title       string `json:"title"`
	IconURL     string `json:"icon_url"`
	Color       int    `json:"color"`
	Updated     string `json:"updated"`
	ProjectType string `json:"project_type"` // e.g., "mod"
	ClientSide  string `json:"client_side"`  // required, optional, unsupported, unknown
	ServerSide  string `json:"server_side"`
}

// Version represents a Modrinth project version.
type Version struct {
	ID            string       `json:"id"`
	ProjectID     string       `json:"project_id"`
	Name          string       `json:"name"`
	VersionNumber string       `json:"version_number"`
	GameVersions  []string     `json:"game_versions"`
	Loaders       []string     `json:"loaders"`
	DatePublished string       `json:"date_published"`
	Dependencies  []Dependency `json:"dependencies"`
	Files         []File       `json:"files"`
}

// Dependency represents a declared relationship between a version and
// another project.
type Dependency struct {
	VersionID      string `json:"version_id"`
	ProjectID      string `json:"project_id"`
	FileName       string `json:"file_name"`
	DependencyType string `json:"dependency_type"` // required, optional, incompatible, embedded
}

// File represents a file within a Modrinth version.
type File struct {
	Filename string            `json:"filename"`
	URL      string            `json:"url"`
	Primary  bool              `json:"primary"`
	Size     int               `json:"size"`
	Hashes   map[string]string `json:"hashes"` // e.g., {"sha512": "...", "sha1": "..."}
}

// PrimaryFile locates the primary file of a version, or the first file when
// no primary is marked. Returns nil for a version with no files.
func (v Version) PrimaryFile() *File {
	for i := range v.Files {
		if v.Files[i].Primary {
			return &v.Files[i]
		}
	}
	if len(v.Files) > 0 {
		return &v.Files[0]
	}
	return nil
}
