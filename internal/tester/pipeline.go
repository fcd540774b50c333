package tester

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
)

// Submission and catalogue endpoints.
const (
	pathSubmitPrefix = "/test/zip/"
	pathCategories   = "/check-category/get-all"
)

// archiveFileName is the file name announced for the uploaded archive.
const archiveFileName = "submission.zip"

// Archiver writes a zip archive of dir to w.
type Archiver interface {
	Archive(dir string, w io.Writer) error
}

// ArchiverFunc adapts a function to Archiver.
type ArchiverFunc func(dir string, w io.Writer) error

// Archive calls f(dir, w).
func (f ArchiverFunc) Archive(dir string, w io.Writer) error {
	return f(dir, w)
}

// Pipeline turns a source directory into an uploaded submission and decodes
// the service's verdict.
type Pipeline struct {
	client     *Client
	session    *Session
	archiver   Archiver
	scratchDir string
	reporter   Reporter
	logger     *slog.Logger
}

// PipelineOption configures optional Pipeline behaviour.
type PipelineOption func(*Pipeline)

// WithScratchDir sets the directory that holds the transient archive file.
// Defaults to os.TempDir().
func WithScratchDir(dir string) PipelineOption {
	return func(p *Pipeline) {
		p.scratchDir = dir
	}
}

// WithReporter routes progress messages to r.
func WithReporter(r Reporter) PipelineOption {
	return func(p *Pipeline) {
		if r != nil {
			p.reporter = r
		}
	}
}

// NewPipeline creates a submission pipeline.
func NewPipeline(client *Client, session *Session, archiver Archiver, logger *slog.Logger, opts ...PipelineOption) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pipeline{
		client:   client,
		session:  session,
		archiver: archiver,
		reporter: nopReporter{},
		logger:   logger,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Submit archives sourceDir, uploads it for checking against categoryID and
// returns the per-file results. The returned ResultSet is never empty.
func (p *Pipeline) Submit(ctx context.Context, sourceDir string, categoryID int) (ResultSet, error) {
	if _, err := p.session.EnsureAccessToken(ctx); err != nil {
		return nil, err
	}

	p.reporter.Update(fmt.Sprintf("Zipping %s...", sourceDir))

	scratch, size, err := p.buildArchive(sourceDir)
	if err != nil {
		return nil, err
	}

	defer p.releaseScratch(scratch)

	p.reporter.Update("Uploading & testing code...")

	spec := requestSpec{
		Method: http.MethodPost,
		Path:   pathSubmitPrefix + strconv.Itoa(categoryID),
		File: &formFile{
			Field:    "file",
			FileName: archiveFileName,
			Reader:   scratch,
			Size:     size,
		},
		Auth: p.session.TokenSource(ctx),
	}

	resp, err := p.client.do(ctx, spec)
	if err != nil {
		return nil, err
	}

	var body submitResponse
	if err := decodeOK(spec, resp, &body); err != nil {
		return nil, err
	}

	if !body.compiled() {
		p.logger.Info("submission did not compile",
			slog.Int("category", categoryID),
			slog.Int("files", len(body.Diagnostics)),
		)

		return nil, &CompilationError{Diagnostics: body.Diagnostics}
	}

	if len(body.FileResults) == 0 {
		return nil, &EmptyResultError{CategoryID: categoryID}
	}

	p.logger.Info("submission checked",
		slog.Int("category", categoryID),
		slog.Int("files", len(body.FileResults)),
		slog.Int("checks", body.FileResults.Total()),
	)

	return body.FileResults, nil
}

// buildArchive zips dir into a fresh scratch file and rewinds it. On error
// the scratch file is already gone.
func (p *Pipeline) buildArchive(dir string) (*os.File, int64, error) {
	f, err := os.CreateTemp(p.scratchDir, "codetester-*.zip")
	if err != nil {
		return nil, 0, &ArchiveError{Dir: dir, Err: fmt.Errorf("creating scratch file: %w", err)}
	}

	fail := func(err error) (*os.File, int64, error) {
		p.releaseScratch(f)
		return nil, 0, &ArchiveError{Dir: dir, Err: err}
	}

	if err := p.archiver.Archive(dir, f); err != nil {
		return fail(err)
	}

	size, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return fail(fmt.Errorf("sizing archive: %w", err))
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fail(fmt.Errorf("rewinding archive: %w", err))
	}

	p.logger.Debug("archive built",
		slog.String("dir", dir),
		slog.String("scratch", f.Name()),
		slog.Int64("bytes", size),
	)

	return f, size, nil
}

// releaseScratch closes and deletes the scratch archive.
func (p *Pipeline) releaseScratch(f *os.File) {
	name := f.Name()

	if err := f.Close(); err != nil {
		p.logger.Debug("closing scratch archive", slog.String("path", name), slog.String("error", err.Error()))
	}

	if err := os.Remove(name); err != nil {
		p.logger.Warn("removing scratch archive", slog.String("path", name), slog.String("error", err.Error()))
	}
}

// Categories lists the check categories available on the server, in server
// order.
func (p *Pipeline) Categories(ctx context.Context) ([]Category, error) {
	if _, err := p.session.EnsureAccessToken(ctx); err != nil {
		return nil, err
	}

	spec := requestSpec{
		Method: http.MethodGet,
		Path:   pathCategories,
		Auth:   p.session.TokenSource(ctx),
	}

	resp, err := p.client.do(ctx, spec)
	if err != nil {
		return nil, err
	}

	var categories []Category
	if err := decodeOK(spec, resp, &categories); err != nil {
		return nil, err
	}

	return categories, nil
}
