package service

import (
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/deppfellow/obs-live-suite/internal/errs"
	"github.com/deppfellow/obs-live-suite/internal/hub"
	"github.com/deppfellow/obs-live-suite/internal/lib/watcher"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// AssetURLPrefix is where the router serves the assets directory.
const AssetURLPrefix = "/assets/"

// AssetKind groups files by how overlays can use them.
type AssetKind string

const (
	AssetImage AssetKind = "image"
	AssetVideo AssetKind = "video"
	AssetAudio AssetKind = "audio"
)

var assetKinds = map[string]AssetKind{
	".png":  AssetImage,
	".jpg":  AssetImage,
	".jpeg": AssetImage,
	".gif":  AssetImage,
	".webp": AssetImage,
	".svg":  AssetImage,
	".mp4":  AssetVideo,
	".webm": AssetVideo,
	".mov":  AssetVideo,
	".mp3":  AssetAudio,
	".wav":  AssetAudio,
	".ogg":  AssetAudio,
}

// Asset is one file of the asset library.
type Asset struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Kind       AssetKind `json:"kind"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// AssetService lists and stores files in the assets directory. With
// watching enabled, changes made on disk are broadcast as
// system/assets.changed.
type AssetService struct {
	dir      string
	maxBytes int64
	hub      hub.Broadcaster
	logger   *zerolog.Logger

	mu      sync.Mutex
	watcher *watcher.Watcher
}

func NewAssetService(dir string, maxBytes int64, b hub.Broadcaster, logger *zerolog.Logger) *AssetService {
	return &AssetService{dir: dir, maxBytes: maxBytes, hub: b, logger: logger}
}

// Dir is the directory served at AssetURLPrefix.
func (s *AssetService) Dir() string {
	return s.dir
}

// MaxBytes is the upload size limit.
func (s *AssetService) MaxBytes() int64 {
	return s.maxBytes
}

// List returns every supported file below the assets directory, sorted by
// name. Hidden files and directories are skipped.
func (s *AssetService) List() ([]Asset, error) {
	assets := []Asset{}

	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == s.dir {
				return fs.SkipAll
			}
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != s.dir {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		kind, ok := assetKinds[strings.ToLower(filepath.Ext(d.Name()))]
		if !ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(s.dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		assets = append(assets, Asset{
			Name:       rel,
			URL:        AssetURLPrefix + rel,
			Kind:       kind,
			Size:       info.Size(),
			ModifiedAt: info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "list assets")
	}

	sort.Slice(assets, func(i, j int) bool { return assets[i].Name < assets[j].Name })
	return assets, nil
}

// Upload stores a multipart file under a sanitised name. An existing file
// is never overwritten; a numeric suffix is added instead.
func (s *AssetService) Upload(fh *multipart.FileHeader) (*Asset, error) {
	if fh.Size > s.maxBytes {
		return nil, errs.NewPayloadTooLargeError("The file exceeds the upload limit of " + strconv.FormatInt(s.maxBytes, 10) + " bytes")
	}

	name := SanitizeAssetName(fh.Filename)
	ext := strings.ToLower(filepath.Ext(name))
	kind, ok := assetKinds[ext]
	if !ok || name == "" {
		return nil, badRequest("ASSET_TYPE_NOT_ALLOWED", "Only image, video and audio files can be uploaded")
	}

	src, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "open upload")
	}
	defer src.Close()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create assets dir")
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	// Guard against a FileHeader that under-reports its size.
	written, err := io.Copy(tmp, io.LimitReader(src, s.maxBytes+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, errors.Wrap(err, "write upload")
	}
	if written > s.maxBytes {
		return nil, errs.NewPayloadTooLargeError("The file exceeds the upload limit of " + strconv.FormatInt(s.maxBytes, 10) + " bytes")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	final := s.freeName(name)
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, final)); err != nil {
		return nil, errors.Wrap(err, "store upload")
	}

	s.logger.Info().Str("name", final).Int64("size", written).Msg("asset uploaded")

	return &Asset{
		Name:       final,
		URL:        AssetURLPrefix + final,
		Kind:       kind,
		Size:       written,
		ModifiedAt: time.Now().UTC(),
	}, nil
}

// Delete removes a top-level or nested asset by its listed name.
func (s *AssetService) Delete(name string) error {
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return badRequest("ASSET_NAME_INVALID", "Invalid asset name")
	}

	if err := os.Remove(filepath.Join(s.dir, clean)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notFound("ASSET_NOT_FOUND", "Asset not found")
		}
		return errors.Wrap(err, "delete asset")
	}
	return nil
}

// freeName returns name, or name-1, name-2... if it is taken.
func (s *AssetService) freeName(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	candidate := name
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(s.dir, candidate)); errors.Is(err, fs.ErrNotExist) {
			return candidate
		}
		candidate = base + "-" + strconv.Itoa(i) + ext
	}
}

var unsafeNameChars = regexp.MustCompile(`[^a-z0-9._-]+`)

const (
	maxAssetName = 120
	// Longer "extensions" are cut with the rest of the name.
	maxAssetExt = 16
)

// SanitizeAssetName keeps the base name, lowercases it and replaces
// anything outside [a-z0-9._-] with "-".
func SanitizeAssetName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ToLower(strings.TrimSpace(name))
	name = unsafeNameChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-.")
	if len(name) > maxAssetName {
		ext := filepath.Ext(name)
		if len(ext) > maxAssetExt {
			ext = ""
		}
		name = name[:maxAssetName-len(ext)] + ext
	}
	return name
}

// StartWatching broadcasts system/assets.changed after changes on disk.
func (s *AssetService) StartWatching() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(err, "create assets dir")
	}

	w, err := watcher.New(s.dir, watcher.DefaultDebounce, s.announceChange, s.logger)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()

	go w.Run()
	return nil
}

func (s *AssetService) announceChange() {
	assets, err := s.List()
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to list assets after change")
		return
	}
	publish(s.hub, s.logger, hub.ChannelSystem, "assets.changed", map[string]int{"count": len(assets)})
}

// Close stops the watcher.
func (s *AssetService) Close() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if w == nil {
		return nil
	}
	return w.Close()
}
