package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// File cache for rendered post pages. Filenames carry an xxHash of the
// cache key so a stale file from an earlier keying scheme never matches.

const cacheRoot = "cache"

// PostCachePath returns the cache file path for a post page.
func PostCachePath(postID int) string {
	hash := generateHash(fmt.Sprintf("post:%d", postID))
	shortHash := hash[:16]
	return filepath.Join(cacheRoot, fmt.Sprintf("%d_%s.html", postID, shortHash))
}

// generateHash generates an xxHash hash for the given string
func generateHash(s string) string {
	hash := xxhash.Sum64String(s)
	return fmt.Sprintf("%016x", hash)
}

// EnsureCacheDir ensures the cache directory exists
func EnsureCacheDir() error {
	return os.MkdirAll(cacheRoot, 0755)
}

// WritePost writes a rendered post page to its cache file.
func WritePost(postID int, html string) error {
	if err := EnsureCacheDir(); err != nil {
		return err
	}
	return os.WriteFile(PostCachePath(postID), []byte(html), 0644)
}

// ReadPost reads a cached post page if it exists and is not expired.
func ReadPost(postID int, maxAge time.Duration) (string, bool) {
	cachePath := PostCachePath(postID)

	info, err := os.Stat(cachePath)
	if err != nil {
		return "", false
	}

	if time.Since(info.ModTime()) > maxAge {
		return "", false
	}

	content, err := os.ReadFile(cachePath)
	if err != nil {
		return "", false
	}

	return string(content), true
}

// ClearPost removes the cached page for a post. Called after a comment
// insert, a post edit, or a post delete.
func ClearPost(postID int) error {
	err := os.Remove(PostCachePath(postID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ClearAll removes every cached page.
func ClearAll() error {
	return os.RemoveAll(cacheRoot)
}

// ClearOld removes cache files older than the specified duration.
func ClearOld(maxAge time.Duration) error {
	return filepath.Walk(cacheRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}

		if info.IsDir() {
			return nil
		}

		if !strings.HasSuffix(path, ".html") {
			return nil
		}

		if time.Since(info.ModTime()) > maxAge {
			os.Remove(path)
		}

		return nil
	})
}
