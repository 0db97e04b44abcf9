package compendium

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/stgreenb/FSF/internal/utils"
	"github.com/tidwall/gjson"
)

const (
	// DefaultRepo is the upstream Draw Steel system repository.
	DefaultRepo = "MetaMorphic-Digital/draw-steel"

	githubAPIFormat = "https://api.github.com/repos/%s/contents/src/packs"

	maxTreeDepth = 10
)

// Fetcher downloads compendium packs from GitHub. retryablehttp takes care
// of transient failures and Retry-After on rate-limit responses.
type Fetcher struct {
	repo   string
	client *retryablehttp.Client
}

func NewFetcher(repo string) *Fetcher {
	if repo == "" {
		repo = DefaultRepo
	}
	client := retryablehttp.NewClient()
	client.Logger = log.New(io.Discard, "", 0)
	client.RetryMax = 5
	return &Fetcher{repo: repo, client: client}
}

// Fetch walks the repository packs tree and returns every item document
// that carries a dsid.
func (f *Fetcher) Fetch(ctx context.Context) ([]*Entry, error) {
	root := fmt.Sprintf(githubAPIFormat, f.repo)
	listing, err := f.getJSON(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("listing packs: %w", err)
	}

	var entries []*Entry
	for _, pack := range gjson.ParseBytes(listing).Array() {
		if pack.Get("type").Str != "dir" {
			continue
		}
		utils.Log.Debugf("fetching pack directory: %s", pack.Get("name").Str)
		if err := f.fetchTree(ctx, pack.Get("url").Str, &entries, 0); err != nil {
			utils.Log.Warnf("could not fetch pack %s: %v", pack.Get("name").Str, err)
		}
	}

	utils.Log.Debugf("GitHub fetch complete: %d items loaded", len(entries))
	return entries, nil
}

func (f *Fetcher) fetchTree(ctx context.Context, apiURL string, entries *[]*Entry, depth int) error {
	if depth > maxTreeDepth {
		return nil
	}

	listing, err := f.getJSON(ctx, apiURL)
	if err != nil {
		return err
	}

	for _, item := range gjson.ParseBytes(listing).Array() {
		switch item.Get("type").Str {
		case "file":
			name := item.Get("name").Str
			if len(name) < 6 || name[len(name)-5:] != ".json" {
				continue
			}
			raw, err := f.getJSON(ctx, item.Get("download_url").Str)
			if err != nil {
				utils.Log.Debugf("could not load %s: %v", name, err)
				continue
			}
			if e := NewEntry(raw); e != nil {
				*entries = append(*entries, e)
			}
		case "dir":
			if err := f.fetchTree(ctx, item.Get("url").Str, entries, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *Fetcher) getJSON(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "fsf-converter")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

// Ensure resolves a catalog from the first available tier: the local packs
// directory, then the on-disk cache, then a remote fetch (which also fills
// the cache).
func Ensure(ctx context.Context, localPath, repo string, forceUpdate bool) (*Catalog, error) {
	if !forceUpdate && localPath != "" {
		if catalog, err := LoadDir(localPath); err == nil && catalog.Len() > 0 {
			utils.Log.Infof("loaded %d compendium items from local packs", catalog.Len())
			return catalog, nil
		}
	}

	cachePath, err := DefaultCachePath()
	if err != nil {
		return nil, err
	}
	cache, err := OpenCache(cachePath)
	if err != nil {
		return nil, err
	}
	defer cache.Close()

	if !forceUpdate {
		if catalog, err := cache.Load(ctx); err == nil && catalog.Len() > 0 {
			utils.Log.Infof("loaded %d compendium items from cache", catalog.Len())
			return catalog, nil
		}
	}

	entries, err := NewFetcher(repo).Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching compendium: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no compendium items available from local path, cache or GitHub")
	}
	if err := cache.Store(ctx, entries); err != nil {
		utils.Log.Warnf("could not cache compendium items: %v", err)
	}

	catalog := NewCatalog()
	for _, e := range entries {
		catalog.Add(e)
	}
	utils.Log.Infof("loaded %d compendium items from GitHub", catalog.Len())
	return catalog, nil
}
