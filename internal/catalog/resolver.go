package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/felixgeelhaar/syllabus/internal/content"
	"github.com/felixgeelhaar/syllabus/internal/domain"
)

// ErrContentNotFound is returned by a ContentProvider that has nothing for a
// reference; the resolver moves on to the next provider.
var ErrContentNotFound = errors.New("lesson content not found")

// ContentProvider supplies raw lesson text for a content reference
type ContentProvider interface {
	// Name identifies the provider in logs and results
	Name() string
	// Location describes where ref would be read from
	Location(ref string) string
	// Read returns the raw text for ref, or ErrContentNotFound
	Read(ref string) ([]byte, error)
}

// FSProvider reads content from an fs.FS under a base directory
type FSProvider struct {
	name string
	fsys fs.FS
	base string
}

// NewFSProvider creates a provider over fsys rooted at base
func NewFSProvider(name string, fsys fs.FS, base string) *FSProvider {
	return &FSProvider{name: name, fsys: fsys, base: base}
}

// NewBundledProvider returns the provider for lessons embedded in the binary
func NewBundledProvider() *FSProvider {
	return NewFSProvider("bundled", content.FS, content.BaseDir)
}

func (p *FSProvider) Name() string { return p.name }

func (p *FSProvider) Location(ref string) string {
	return path.Join(p.base, ref)
}

func (p *FSProvider) Read(ref string) ([]byte, error) {
	if !fs.ValidPath(ref) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidContentRef, ref)
	}
	data, err := fs.ReadFile(p.fsys, p.Location(ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("read %s: %w", p.Location(ref), err)
	}
	return data, nil
}

// DirProvider reads content from the local filesystem
type DirProvider struct {
	root string
}

// NewDirProvider creates a provider reading from root/ref
func NewDirProvider(root string) *DirProvider {
	return &DirProvider{root: root}
}

// NewFilesystemProvider returns the provider for lessons under the working
// directory's content base dir
func NewFilesystemProvider() *DirProvider {
	return NewDirProvider(content.BaseDir)
}

func (p *DirProvider) Name() string { return "filesystem" }

func (p *DirProvider) Location(ref string) string {
	return filepath.Join(p.root, filepath.FromSlash(ref))
}

func (p *DirProvider) Read(ref string) ([]byte, error) {
	if !fs.ValidPath(ref) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidContentRef, ref)
	}
	data, err := os.ReadFile(p.Location(ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("read %s: %w", p.Location(ref), err)
	}
	return data, nil
}

// Content is the outcome of resolving a lesson's raw text
type Content struct {
	Text      string
	Provider  string   // provider that supplied Text; empty if none did
	Attempted []string // locations tried, in order
}

// LastAttempt returns the last location tried
func (c Content) LastAttempt() string {
	if len(c.Attempted) == 0 {
		return ""
	}
	return c.Attempted[len(c.Attempted)-1]
}

// Resolver walks an ordered list of providers; the first match wins
type Resolver struct {
	providers []ContentProvider
	logger    *slog.Logger
}

// NewResolver creates a resolver over providers in priority order
func NewResolver(providers ...ContentProvider) *Resolver {
	return &Resolver{
		providers: append([]ContentProvider(nil), providers...),
		logger:    slog.Default(),
	}
}

// DefaultResolver resolves bundled lessons first, then the local filesystem
func DefaultResolver() *Resolver {
	return NewResolver(NewBundledProvider(), NewFilesystemProvider())
}

// Providers returns the provider names in resolution order
func (r *Resolver) Providers() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

// Resolve returns the raw text of a lesson.
// A provider error other than ErrContentNotFound stops the chain.
func (r *Resolver) Resolve(lesson domain.Lesson) (Content, error) {
	var result Content

	for _, p := range r.providers {
		loc := p.Location(lesson.ContentRef)
		result.Attempted = append(result.Attempted, loc)

		data, err := p.Read(lesson.ContentRef)
		if err == nil {
			result.Text = string(data)
			result.Provider = p.Name()
			return result, nil
		}
		if errors.Is(err, ErrContentNotFound) {
			r.logger.Debug("lesson content miss", "lesson", lesson.ID, "provider", p.Name(), "path", loc)
			continue
		}

		r.logger.Warn("lesson content read failed", "lesson", lesson.ID, "provider", p.Name(), "path", loc, "error", err)
		return result, fmt.Errorf("provider %s: %w", p.Name(), err)
	}

	return result, fmt.Errorf("%w: %s", ErrContentNotFound, lesson.ContentRef)
}
