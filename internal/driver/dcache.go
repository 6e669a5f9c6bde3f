package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"cmtcode/internal/classify"
	"cmtcode/internal/comment"
	"cmtcode/internal/diag"
	"cmtcode/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// Digest is a SHA-256 cache key.
type Digest [32]byte

// DiskCache хранит результаты проверки файлов на диске, ключ — хэш
// содержимого файла вместе с отпечатком настроек.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is everything needed to rebuild a FileResult without
// scanning the file again.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16
	Path   string

	Comments []CachedComment
	// LexDiags are scanner diagnostics (unterminated comments, text blocks).
	LexDiags []CachedDiag
}

// CachedComment is one comment block with its verdict.
type CachedComment struct {
	Kind        uint8
	Start       uint32
	End         uint32
	StartLine   uint32
	EndLine     uint32
	IsCode      bool
	Probability float64
	Line        int
	Reason      uint8
}

// CachedDiag is a diagnostic without notes or fixes.
type CachedDiag struct {
	Code     uint16
	Severity uint8
	Start    uint32
	End      uint32
	Message  string
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(filepath.Join(base, app))
}

// NewDiskCache opens a cache rooted at dir, creating it if needed.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// CacheKey combines file content hash and settings fingerprint.
func CacheKey(content [32]byte, fingerprint string) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	_, _ = h.Write([]byte(fingerprint))
	_, _ = h.Write([]byte{byte(diskCacheSchemaVersion >> 8), byte(diskCacheSchemaVersion)})
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// два символа префикса, чтобы не складывать всё в один каталог
	return filepath.Join(c.dir, "files", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, p)
}

// Get reads and deserializes a payload from the disk cache.
// A payload with a foreign schema is reported as a miss.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll removes every cached result, keeping the (empty) cache root.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименовываем, чтобы параллельный запуск не прочитал полуудалённый каталог
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// toDiskPayload converts verdicts and scanner diagnostics for caching.
func toDiskPayload(path string, verdicts []Verdict, lexDiags []*diag.Diagnostic) *DiskPayload {
	payload := &DiskPayload{
		Schema:   diskCacheSchemaVersion,
		Path:     path,
		Comments: make([]CachedComment, len(verdicts)),
		LexDiags: make([]CachedDiag, len(lexDiags)),
	}
	for i, v := range verdicts {
		payload.Comments[i] = CachedComment{
			Kind:        uint8(v.Block.Kind),
			Start:       v.Block.Span.Start,
			End:         v.Block.Span.End,
			StartLine:   v.Block.StartLine,
			EndLine:     v.Block.EndLine,
			IsCode:      v.Result.IsCode,
			Probability: v.Result.Probability,
			Line:        v.Result.Line,
			Reason:      uint8(v.Result.Reason),
		}
	}
	for i, d := range lexDiags {
		payload.LexDiags[i] = CachedDiag{
			Code:     uint16(d.Code),
			Severity: uint8(d.Severity),
			Start:    d.Primary.Start,
			End:      d.Primary.End,
			Message:  d.Message,
		}
	}
	return payload
}

// fromDiskPayload rebuilds verdicts against file. It fails when a cached
// span does not fit the file, which means the entry is stale or corrupt.
func fromDiskPayload(payload *DiskPayload, file *source.File) ([]Verdict, []*diag.Diagnostic, bool) {
	size := uint64(len(file.Content))
	verdicts := make([]Verdict, len(payload.Comments))
	for i, c := range payload.Comments {
		if c.Start > c.End || uint64(c.End) > size {
			return nil, nil, false
		}
		sp := source.Span{File: file.ID, Start: c.Start, End: c.End}
		verdicts[i] = Verdict{
			Block: comment.Block{
				Kind:      comment.Kind(c.Kind),
				Text:      string(file.Content[c.Start:c.End]),
				StartLine: c.StartLine,
				EndLine:   c.EndLine,
				Span:      sp,
			},
			Result: classify.Result{
				IsCode:      c.IsCode,
				Probability: c.Probability,
				StartLine:   c.StartLine,
				EndLine:     c.EndLine,
				Line:        c.Line,
				Reason:      classify.Reason(c.Reason),
			},
		}
	}
	diags := make([]*diag.Diagnostic, len(payload.LexDiags))
	for i, d := range payload.LexDiags {
		if d.Start > d.End || uint64(d.End) > size {
			return nil, nil, false
		}
		diags[i] = diag.New(diag.Severity(d.Severity), diag.Code(d.Code),
			source.Span{File: file.ID, Start: d.Start, End: d.End}, d.Message)
	}
	return verdicts, diags, true
}
